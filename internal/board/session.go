package board

import (
	"context"
	"time"
)

// Session owns the local mirror of one gesture and writes its result to repo.
// It is not safe for concurrent use.
type Session struct {
	repo    Repository
	state   State
	touched time.Time
}

// Open loads the persisted board and starts a session on it.
func Open(ctx context.Context, repo Repository, now time.Time) (*Session, error) {
	state, err := Load(ctx, repo)
	if err != nil {
		return nil, err
	}
	return &Session{repo: repo, state: state, touched: now}, nil
}

// State returns the current local mirror.
func (s *Session) State() State {
	return s.state
}

// Touched returns the time of the last handled event.
func (s *Session) Touched() time.Time {
	return s.touched
}

// Handle reduces ev into the local mirror and applies the resulting writes. The mirror is
// updated even when a write fails so the client keeps the optimistic view.
func (s *Session) Handle(ctx context.Context, ev Event, now time.Time) (State, []Call, error) {
	next, calls := Reconcile(s.state, ev)
	s.state = next
	s.touched = now
	if err := Flush(ctx, s.repo, calls); err != nil {
		return next, calls, err
	}
	return next, calls, nil
}
