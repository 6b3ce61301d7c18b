package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"

	queuectl "github.com/AdvikNarendran/queueCtl-Flam"
	"github.com/AdvikNarendran/queueCtl-Flam/job"
	"github.com/AdvikNarendran/queueCtl-Flam/store"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", "file::memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	if err := store.InitDB(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestAddAndClaim(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	j := job.New("job-1", "echo hi", 3, nil, nil)
	if err := s.Add(ctx, j); err != nil {
		t.Fatal(err)
	}

	claimed, err := s.Claim(ctx, "worker-1", time.Now().UTC(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if claimed == nil {
		t.Fatal("expected a claimable job")
	}
	if claimed.State != job.Processing {
		t.Fatalf("state = %v, want Processing", claimed.State)
	}
	if claimed.LockedBy != "worker-1" {
		t.Fatalf("LockedBy = %q, want worker-1", claimed.LockedBy)
	}
}

func TestAddDuplicateIDFails(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	j := job.New("dup", "echo hi", 3, nil, nil)
	if err := s.Add(ctx, j); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, job.New("dup", "echo hi", 3, nil, nil)); err != queuectl.ErrAlreadyExists {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestClaimIsExclusive(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	if err := s.Add(ctx, job.New("job-1", "echo hi", 3, nil, nil)); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	a, err := s.Claim(ctx, "worker-a", now, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Claim(ctx, "worker-b", now, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if a == nil || b != nil {
		t.Fatalf("expected exactly one claim to succeed, got a=%v b=%v", a, b)
	}
}

func TestClaimSkipsFutureRunAt(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	future := time.Now().UTC().Add(time.Hour)
	if err := s.Add(ctx, job.New("scheduled", "echo hi", 3, nil, &future)); err != nil {
		t.Fatal(err)
	}

	claimed, err := s.Claim(ctx, "worker-1", time.Now().UTC(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if claimed != nil {
		t.Fatalf("expected no claimable job, got %v", claimed)
	}
}

func TestClaimReclaimsStaleLock(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	if err := s.Add(ctx, job.New("job-1", "echo hi", 3, nil, nil)); err != nil {
		t.Fatal(err)
	}

	start := time.Now().UTC()
	if _, err := s.Claim(ctx, "worker-a", start, time.Minute); err != nil {
		t.Fatal(err)
	}

	// Within the staleLock window, a second worker must not reclaim it.
	if claimed, err := s.Claim(ctx, "worker-b", start.Add(30*time.Second), time.Minute); err != nil {
		t.Fatal(err)
	} else if claimed != nil {
		t.Fatal("lock reclaimed before staleLock elapsed")
	}

	// Past the staleLock window, it becomes reclaimable.
	claimed, err := s.Claim(ctx, "worker-b", start.Add(2*time.Minute), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if claimed == nil || claimed.LockedBy != "worker-b" {
		t.Fatalf("expected worker-b to reclaim stale lock, got %v", claimed)
	}
}

func TestUpdateRejectsWrongOwner(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	if err := s.Add(ctx, job.New("job-1", "echo hi", 3, nil, nil)); err != nil {
		t.Fatal(err)
	}
	claimed, err := s.Claim(ctx, "worker-a", time.Now().UTC(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	claimed.State = job.Completed
	if err := s.Update(ctx, claimed, "worker-b"); err != queuectl.ErrLockLost {
		t.Fatalf("err = %v, want ErrLockLost", err)
	}
}

func TestUpdateCompletesAndClearsLock(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	if err := s.Add(ctx, job.New("job-1", "echo hi", 3, nil, nil)); err != nil {
		t.Fatal(err)
	}
	claimed, err := s.Claim(ctx, "worker-a", time.Now().UTC(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	claimed.State = job.Completed
	if err := s.Update(ctx, claimed, "worker-a"); err != nil {
		t.Fatal(err)
	}

	jobs, err := s.List(ctx, job.Completed)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 completed job, got %d", len(jobs))
	}
	if jobs[0].Locked() {
		t.Fatal("completed job should be unlocked")
	}
}

func TestStatsCountsByState(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Add(ctx, job.New(string(rune('a'+i)), "echo hi", 3, nil, nil)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Claim(ctx, "worker-a", time.Now().UTC(), time.Minute); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats[job.Pending] != 2 {
		t.Fatalf("pending = %d, want 2", stats[job.Pending])
	}
	if stats[job.Processing] != 1 {
		t.Fatalf("processing = %d, want 1", stats[job.Processing])
	}
}

func TestRequeueResetsDeadJob(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	if err := s.Add(ctx, job.New("job-1", "echo hi", 1, nil, nil)); err != nil {
		t.Fatal(err)
	}
	claimed, err := s.Claim(ctx, "worker-a", time.Now().UTC(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	claimed.State = job.Dead
	claimed.Attempts = 1
	if err := s.Update(ctx, claimed, "worker-a"); err != nil {
		t.Fatal(err)
	}

	if err := s.Requeue(ctx, "job-1"); err != nil {
		t.Fatal(err)
	}

	jobs, err := s.List(ctx, job.Pending)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].Attempts != 0 {
		t.Fatalf("expected requeued job reset to Pending/Attempts=0, got %+v", jobs)
	}
}

func TestRequeueRejectsNonDeadJob(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	if err := s.Add(ctx, job.New("job-1", "echo hi", 3, nil, nil)); err != nil {
		t.Fatal(err)
	}

	if err := s.Requeue(ctx, "job-1"); err != queuectl.ErrInvalidState {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestRequeueUnknownIDFails(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	if err := s.Requeue(ctx, "missing"); err != queuectl.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
