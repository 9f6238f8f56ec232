package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestStart_RejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("not a cron expression")

	err := s.Start(context.Background(), func(time.Time) {})
	if err == nil {
		t.Fatal("expected error for invalid expression")
	}
	if !strings.Contains(err.Error(), "not a cron expression") {
		t.Errorf("error should carry the expression: %v", err)
	}
}

func TestStart_FiresJob(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan time.Time, 1)
	s := NewCronScheduler("@every 10ms")
	if err := s.Start(ctx, func(ts time.Time) {
		select {
		case fired <- ts:
		default:
		}
	}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("job never fired")
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestStart_NilJobIsNoOp(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("@every 1h")
	if err := s.Start(context.Background(), nil); err != nil {
		t.Fatalf("Start with nil job failed: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestStart_SecondCallIsNoOp(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewCronScheduler("@every 1h")
	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestStop_WithoutStart(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("@every 1h")
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop without Start failed: %v", err)
	}
}
