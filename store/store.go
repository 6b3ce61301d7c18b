package store

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/bun"

	queuectl "github.com/AdvikNarendran/queueCtl-Flam"
	"github.com/AdvikNarendran/queueCtl-Flam/job"
)

// Store is a bun-backed implementation of queuectl.Store.
//
// Claim performs the atomic dequeue-and-lock in a single
// UPDATE ... WHERE id IN (subquery) RETURNING statement, so that two
// concurrent Claim calls never return the same row. Update is a
// conditional UPDATE guarded by the job id and LockedBy (the current state
// is not checked), so a worker whose lock has since been reclaimed cannot
// trample the new owner's write.
type Store struct {
	db *bun.DB
}

// New wraps an already-connected, already-initialized (see InitDB) *bun.DB.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// Add inserts j in the Pending state. It fails with
// queuectl.ErrAlreadyExists if j.ID is already present.
func (s *Store) Add(ctx context.Context, j *job.Job) error {
	_, err := s.db.NewInsert().
		Model(fromJob(j)).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return queuectl.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Claim selects up to one eligible job and transitions it to Processing.
//
// Eligibility: state in (pending, failed); unlocked or locked_at older
// than staleLock; next_retry_at unset or <= now; run_at unset or <= now.
// Pending sorts before failed, ties broken by ascending created_at.
func (s *Store) Claim(ctx context.Context, workerID string, now time.Time, staleLock time.Duration) (*job.Job, error) {
	staleBefore := now.Add(-staleLock)

	subQuery := s.db.NewSelect().
		Model((*jobModel)(nil)).
		Column("id").
		Where("state IN (?, ?)", job.Pending, job.Failed).
		WhereGroup("AND", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("locked_at IS NULL").
				WhereOr("locked_at < ?", staleBefore)
		}).
		WhereGroup("AND", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("next_retry_at IS NULL").
				WhereOr("next_retry_at <= ?", now)
		}).
		WhereGroup("AND", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("run_at IS NULL").
				WhereOr("run_at <= ?", now)
		}).
		OrderExpr("CASE state WHEN ? THEN 0 WHEN ? THEN 1 END", job.Pending, job.Failed).
		OrderExpr("created_at ASC").
		Limit(1)

	var rows []jobModel
	_, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", job.Processing).
		Set("locked_by = ?", workerID).
		Set("locked_at = ?", now).
		Set("updated_at = ?", now).
		Where("id IN (?)", subQuery).
		Returning("*").
		Exec(ctx, &rows)
	if err != nil {
		// Claim swallows storage errors: the caller retries on its next
		// poll tick rather than crashing the worker loop.
		return nil, nil
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toJob(), nil
}

// Update writes back a job previously returned by Claim. The caller must
// still hold the lock: the underlying UPDATE is conditioned on
// locked_by = workerID, and queuectl.ErrLockLost is returned if no row
// matched (lock expired and was reclaimed by another worker).
//
// Update always clears locked_by/locked_at, regardless of the resulting
// state: it is never called to transition a job into Processing (that
// only happens inside Claim), so the job is never meant to remain locked
// afterwards — a Failed job must be immediately reclaimable by Claim once
// NextRetryAt passes, not held by its previous owner's stale lock for the
// rest of the stale-lock window.
func (s *Store) Update(ctx context.Context, j *job.Job, workerID string) error {
	now := time.Now().UTC()
	j.UpdatedAt = now
	j.LockedBy = ""
	j.LockedAt = nil

	res, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", j.State).
		Set("attempts = ?", j.Attempts).
		Set("updated_at = ?", now).
		Set("output = ?", j.Output).
		Set("next_retry_at = ?", j.NextRetryAt).
		Set("locked_by = ?", "").
		Set("locked_at = NULL").
		Where("id = ?", j.ID).
		Where("locked_by = ?", workerID).
		Exec(ctx)
	if err != nil {
		return queuectl.NewStorageError("update", err)
	}
	if !isAffected(res) {
		return queuectl.ErrLockLost
	}
	return nil
}

// List enumerates jobs, optionally filtered by state (job.Unknown means
// no filter).
func (s *Store) List(ctx context.Context, state job.State) ([]*job.Job, error) {
	var rows []jobModel
	q := s.db.NewSelect().Model(&rows)
	if state != job.Unknown {
		q = q.Where("state = ?", state)
	}
	q = q.OrderExpr("created_at ASC")
	if err := q.Scan(ctx); err != nil {
		return nil, queuectl.NewStorageError("list", err)
	}
	ret := make([]*job.Job, 0, len(rows))
	for i := range rows {
		ret = append(ret, rows[i].toJob())
	}
	return ret, nil
}

// Stats returns a count of jobs per state.
func (s *Store) Stats(ctx context.Context) (map[job.State]int64, error) {
	var counts []struct {
		State job.State `bun:"state"`
		Count int64     `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*jobModel)(nil)).
		ColumnExpr("state").
		ColumnExpr("count(*) AS count").
		GroupExpr("state").
		Scan(ctx, &counts)
	if err != nil {
		return nil, queuectl.NewStorageError("stats", err)
	}
	ret := make(map[job.State]int64, len(counts))
	for _, c := range counts {
		ret[c.State] = c.Count
	}
	return ret, nil
}

// Requeue resets a Dead job back to Pending with Attempts=0, clearing its
// lock and NextRetryAt. It returns queuectl.ErrNotFound if id does not
// exist, or queuectl.ErrInvalidState if the job is not currently Dead.
func (s *Store) Requeue(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", job.Pending).
		Set("attempts = ?", 0).
		Set("locked_by = ?", "").
		Set("locked_at = NULL").
		Set("next_retry_at = NULL").
		Set("run_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("state = ?", job.Dead).
		Exec(ctx)
	if err != nil {
		return queuectl.NewStorageError("requeue", err)
	}
	if isAffected(res) {
		return nil
	}

	exists, err := s.db.NewSelect().Model((*jobModel)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return queuectl.NewStorageError("requeue", err)
	}
	if !exists {
		return queuectl.ErrNotFound
	}
	return queuectl.ErrInvalidState
}

// isUniqueViolation recognizes a primary-key collision on the jobs table.
// modernc.org/sqlite does not expose a typed constraint-violation error,
// so callers are expected to match on the driver's message text.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
