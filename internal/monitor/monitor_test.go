package monitor

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mhabib/tradefloor/internal/config"
	"github.com/mhabib/tradefloor/internal/session"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = 1
	s, err := session.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}
	return s
}

func TestRunStopsOnStopCommand(t *testing.T) {
	sess := newTestSession(t)
	in := strings.NewReader("status\nsummary\nmovers\nstop\n")
	var out bytes.Buffer

	m := New(sess, config.MonitorConfig{AutoStopTimeout: time.Minute}, in, &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"market open: false", "Market Summary", "Trader Performance", "Top Movers", "Stopping run."} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunStopsOnEOF(t *testing.T) {
	sess := newTestSession(t)
	var out bytes.Buffer

	m := New(sess, config.MonitorConfig{AutoStopTimeout: time.Minute}, strings.NewReader(""), &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed on EOF: %v", err)
	}
}

func TestRunAutoStopsWhenIdle(t *testing.T) {
	sess := newTestSession(t)
	// A pipe with no writer blocks forever, like an idle terminal.
	r, w := io.Pipe()
	defer w.Close()
	var out bytes.Buffer

	m := New(sess, config.MonitorConfig{AutoStopTimeout: 50 * time.Millisecond}, r, &out, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not auto-stop")
	}

	if !strings.Contains(out.String(), "Auto-stop") {
		t.Errorf("output missing auto-stop notice:\n%s", out.String())
	}
}

func TestRunReturnsOnContextCancel(t *testing.T) {
	sess := newTestSession(t)
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	m := New(sess, config.MonitorConfig{AutoStopTimeout: time.Minute}, r, io.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestUnknownCommandIsReported(t *testing.T) {
	sess := newTestSession(t)
	var out bytes.Buffer

	m := New(sess, config.MonitorConfig{AutoStopTimeout: time.Minute}, strings.NewReader("frobnicate\nstop\n"), &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(out.String(), `unknown command "frobnicate"`) {
		t.Errorf("output missing unknown-command notice:\n%s", out.String())
	}
}

func TestVolatilityBeforeStartReportsError(t *testing.T) {
	sess := newTestSession(t)
	var out bytes.Buffer

	m := New(sess, config.MonitorConfig{AutoStopTimeout: time.Minute}, strings.NewReader("volatility\nstop\n"), &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(out.String(), "volatility burst failed") {
		t.Errorf("output missing volatility failure notice:\n%s", out.String())
	}
}
