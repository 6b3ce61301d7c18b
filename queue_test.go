package queuectl_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	queuectl "github.com/AdvikNarendran/queueCtl-Flam"
	"github.com/AdvikNarendran/queueCtl-Flam/config"
	"github.com/AdvikNarendran/queueCtl-Flam/job"
)

func newTestQueue(t *testing.T) *queuectl.Queue {
	t.Helper()
	s := newTestStore(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	cfg, err := config.New(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	return queuectl.NewQueue(s, cfg, queuectl.SystemClock(), testLogger())
}

func TestQueueEnqueueGeneratesID(t *testing.T) {
	q := newTestQueue(t)
	id, err := q.Enqueue(context.Background(), "true", queuectl.EnqueueOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	jobs, err := q.List(context.Background(), job.Pending)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].ID != id {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}

func TestQueueEnqueueHonorsExplicitID(t *testing.T) {
	q := newTestQueue(t)
	id, err := q.Enqueue(context.Background(), "true", queuectl.EnqueueOptions{ID: "explicit-id"})
	if err != nil {
		t.Fatal(err)
	}
	if id != "explicit-id" {
		t.Fatalf("id = %q, want explicit-id", id)
	}
}

func TestQueueStartStopProcessesJob(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, "true", queuectl.EnqueueOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := q.Start(ctx, true); err != nil {
		t.Fatal(err)
	}
	defer q.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		jobs, err := q.List(ctx, job.Completed)
		if err != nil {
			t.Fatal(err)
		}
		if len(jobs) == 1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("job did not complete in time")
}

func TestQueueRequeue(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	id, err := q.Enqueue(ctx, "false", queuectl.EnqueueOptions{MaxRetries: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := q.Start(ctx, true); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		jobs, err := q.List(ctx, job.Dead)
		if err != nil {
			t.Fatal(err)
		}
		if len(jobs) == 1 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err := q.Stop(); err != nil {
		t.Fatal(err)
	}

	if err := q.Requeue(ctx, id); err != nil {
		t.Fatal(err)
	}
	jobs, err := q.List(ctx, job.Pending)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected requeued job to be Pending, got %+v", jobs)
	}
}
