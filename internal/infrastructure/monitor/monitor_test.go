package monitor

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fixedSize int

func (f fixedSize) Size() (int, error) { return int(f), nil }

func TestRefreshRecordsEveryComponent(t *testing.T) {
	down := false
	m := New(map[string]Check{
		"postgres": func(context.Context) error { return nil },
		"redis": func(context.Context) error {
			if down {
				return errors.New("connection refused")
			}
			return nil
		},
	}, fixedSize(3), time.Minute, nil)

	m.Refresh()
	if !m.IsOnline() {
		t.Fatalf("expected online, got %+v", m.GetStatus())
	}
	if s := m.GetStatus(); !s.Buffer || s.BufferSize != 3 {
		t.Fatalf("unexpected buffer status %+v", s)
	}

	down = true
	m.Refresh()
	if m.IsOnline() {
		t.Fatal("expected offline after redis failure")
	}
	if m.GetStatus().Components["redis"] {
		t.Fatal("redis should be reported down")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(nil, nil, time.Minute, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
