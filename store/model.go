package store

import (
	"math"
	"time"

	"github.com/uptrace/bun"

	"github.com/AdvikNarendran/queueCtl-Flam/job"
)

type jobModel struct {
	bun.BaseModel `bun:"table:jobs"`
	ID            string `bun:"id,pk"`
	Command       string `bun:"command,notnull"`

	State    job.State `bun:"state,notnull,default:1"`
	Attempts uint32    `bun:"attempts,notnull,default:0"`

	MaxRetries uint32 `bun:"max_retries,notnull"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	LockedBy string     `bun:"locked_by,nullzero"`
	LockedAt *time.Time `bun:"locked_at,nullzero,default:null"`

	NextRetryAt *time.Time `bun:"next_retry_at,nullzero,default:null"`
	RunAt       *time.Time `bun:"run_at,nullzero,default:null"`

	TimeoutSeconds *int64 `bun:"timeout_seconds,nullzero,default:null"`

	Output string `bun:"output,nullzero"`
}

func (jm *jobModel) toJob() *job.Job {
	j := &job.Job{
		ID:          jm.ID,
		Command:     jm.Command,
		State:       jm.State,
		Attempts:    jm.Attempts,
		MaxRetries:  jm.MaxRetries,
		CreatedAt:   jm.CreatedAt,
		UpdatedAt:   jm.UpdatedAt,
		LockedBy:    jm.LockedBy,
		LockedAt:    jm.LockedAt,
		NextRetryAt: jm.NextRetryAt,
		RunAt:       jm.RunAt,
		Output:      jm.Output,
	}
	if jm.TimeoutSeconds != nil {
		d := time.Duration(*jm.TimeoutSeconds) * time.Second
		j.Timeout = &d
	}
	return j
}

func fromJob(j *job.Job) *jobModel {
	jm := &jobModel{
		ID:          j.ID,
		Command:     j.Command,
		State:       j.State,
		Attempts:    j.Attempts,
		MaxRetries:  j.MaxRetries,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		LockedBy:    j.LockedBy,
		LockedAt:    j.LockedAt,
		NextRetryAt: j.NextRetryAt,
		RunAt:       j.RunAt,
		Output:      j.Output,
	}
	if j.Timeout != nil {
		// Stored as whole seconds, rounded up, so a positive sub-second
		// timeout is not read back as 0 (no limit).
		secs := int64(math.Ceil(j.Timeout.Seconds()))
		jm.TimeoutSeconds = &secs
	}
	return jm
}
