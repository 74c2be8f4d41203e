package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fastygo/taskboard/domain"
)

func TestDispatcherRoutesByName(t *testing.T) {
	d := NewDispatcher()
	d.RegisterCommand("drag_end", func(ctx context.Context, payload interface{}) (interface{}, error) {
		return payload.(string) + "!", nil
	})
	d.RegisterCommand("click_lock", func(ctx context.Context, payload interface{}) (interface{}, error) {
		return nil, errors.New("store down")
	})
	d.RegisterQuery("board", func(ctx context.Context, params interface{}) (interface{}, error) {
		return "view of " + params.(string), nil
	})

	out, err := d.ExecuteCommand(context.Background(), "drag_end", "t1")
	if err != nil || out != "t1!" {
		t.Fatalf("drag_end = %v, %v", out, err)
	}
	if _, err := d.ExecuteCommand(context.Background(), "click_lock", nil); err == nil || !Bufferable(err) {
		t.Fatalf("handler error should pass through, got %v", err)
	}
	out, err = d.ExecuteQuery(context.Background(), "board", "u1")
	if err != nil || out != "view of u1" {
		t.Fatalf("board = %v, %v", out, err)
	}

	if !d.HasCommand("drag_end") || d.HasCommand("drag_sideways") {
		t.Fatal("HasCommand mismatch")
	}
	names := d.Commands()
	if len(names) != 2 || names[0] != "click_lock" || names[1] != "drag_end" {
		t.Fatalf("commands = %v", names)
	}
}

func TestDispatcherUnknownNamesAreInvalid(t *testing.T) {
	d := NewDispatcher()
	if _, err := d.ExecuteCommand(context.Background(), "nope", nil); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("unknown command err = %v", err)
	}
	if _, err := d.ExecuteQuery(context.Background(), "nope", nil); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("unknown query err = %v", err)
	}
	if Bufferable(domain.ErrTaskNotFound) {
		t.Fatal("domain errors must not be buffered")
	}
}
