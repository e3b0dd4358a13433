package cron

import (
	"context"
	"fmt"
)

// Sweeper evicts idle sessions. *session.Manager satisfies it.
type Sweeper interface {
	Sweep(ctx context.Context) int
}

type sessionSweepJob struct {
	sweeper Sweeper
}

func NewSessionSweepJob(sweeper Sweeper) (Job, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("session sweeper required")
	}
	return &sessionSweepJob{sweeper: sweeper}, nil
}

func (j *sessionSweepJob) Name() string { return "session_sweep" }

func (j *sessionSweepJob) Run(ctx context.Context) error {
	j.sweeper.Sweep(ctx)
	return nil
}
