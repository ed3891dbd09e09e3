package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ohack/grantfinder/internal/model"
)

func testSlogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStep records execution and optionally fails.
type fakeStep struct {
	name string
	err  error
	log  *[]string
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Do(_ context.Context, _ *model.RunReport) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("steps run in order", func(t *testing.T) {
		t.Parallel()
		var log []string
		p := New(WithLogger(testSlogger()))
		p.AddSteps(
			&fakeStep{name: "first", log: &log},
			&fakeStep{name: "second", log: &log},
			&fakeStep{name: "third", log: &log},
		)

		report := model.NewRunReport()
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		want := []string{"first", "second", "third"}
		if len(log) != 3 || log[0] != want[0] || log[1] != want[1] || log[2] != want[2] {
			t.Errorf("execution order = %v, want %v", log, want)
		}
		if report.FinishedAt.IsZero() {
			t.Error("FinishedAt not set")
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()
		var log []string
		boom := errors.New("boom")
		p := New(WithLogger(testSlogger()))
		p.AddSteps(
			&fakeStep{name: "ok", log: &log},
			&fakeStep{name: "fails", err: boom, log: &log},
			&fakeStep{name: "never", log: &log},
		)

		report := model.NewRunReport()
		if err := p.Execute(context.Background(), report); !errors.Is(err, boom) {
			t.Fatalf("Execute() error = %v, want boom", err)
		}
		if len(log) != 2 {
			t.Errorf("executed %v, want stop after failure", log)
		}
		if report.ErrorMessage != "boom" {
			t.Errorf("ErrorMessage = %q, want recorded error", report.ErrorMessage)
		}
	})

	t.Run("continue on error runs remaining steps", func(t *testing.T) {
		t.Parallel()
		var log []string
		p := New(WithLogger(testSlogger()), WithContinueOnError(true))
		p.AddSteps(
			&fakeStep{name: "fails", err: errors.New("boom"), log: &log},
			&fakeStep{name: "still-runs", log: &log},
		)

		if err := p.Execute(context.Background(), model.NewRunReport()); err != nil {
			t.Fatalf("Execute() error = %v, want nil with continueOnError", err)
		}
		if len(log) != 2 {
			t.Errorf("executed %v, want both steps", log)
		}
	})

	t.Run("cancellation stops before next step", func(t *testing.T) {
		t.Parallel()
		var log []string
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := New(WithLogger(testSlogger()))
		p.AddStep(&fakeStep{name: "never", log: &log})

		if err := p.Execute(ctx, model.NewRunReport()); !errors.Is(err, context.Canceled) {
			t.Fatalf("Execute() error = %v, want context.Canceled", err)
		}
		if len(log) != 0 {
			t.Errorf("executed %v, want none after cancellation", log)
		}
	})
}
