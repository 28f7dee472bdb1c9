// Package monitor runs the interactive command loop that drives a
// simulation run from the terminal.
package monitor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mhabib/tradefloor/internal/config"
	"github.com/mhabib/tradefloor/internal/report"
	"github.com/mhabib/tradefloor/internal/session"
)

// Monitor reads commands from in and reports on the session to out.
// If no command arrives within the auto-stop timeout the run ends on
// its own, so an unattended simulation never runs forever.
type Monitor struct {
	sess   *session.Session
	cfg    config.MonitorConfig
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

// New creates a monitor for sess. in is typically os.Stdin and out os.Stdout.
func New(sess *session.Session, cfg config.MonitorConfig, in io.Reader, out io.Writer, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		sess:   sess,
		cfg:    cfg,
		in:     in,
		out:    out,
		logger: logger,
	}
}

// Run processes commands until "stop", input EOF, the auto-stop timeout,
// or ctx cancellation. It returns nil on a normal stop and ctx.Err() when
// cancelled; the caller closes the session afterwards.
func (m *Monitor) Run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(m.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(m.out, "Commands: status, summary, movers, volatility, stop")

	timer := time.NewTimer(m.cfg.AutoStopTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timer.C:
			m.logger.Info("no commands received, stopping run",
				"timeout", m.cfg.AutoStopTimeout,
			)
			fmt.Fprintln(m.out, "Auto-stop: no commands received.")
			return nil

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if m.handle(strings.TrimSpace(line)) {
				return nil
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(m.cfg.AutoStopTimeout)
		}
	}
}

// handle runs one command. It reports true when the run should end.
func (m *Monitor) handle(cmd string) bool {
	switch cmd {
	case "":
		// ignore blank lines

	case "status":
		st := m.sess.Status()
		fmt.Fprintf(m.out, "run %s | market open: %v | stocks: %d | traders: %d | trades: %d (%.1f%% ok)\n",
			st.RunID, st.MarketOpen, st.Stocks, st.Traders, st.Trades.Total, st.Trades.SuccessRate)

	case "summary":
		fmt.Fprintln(m.out, report.MarketSummary(m.sess.Quotes()))
		fmt.Fprintln(m.out, report.TraderPerformance(m.sess.TraderRows()))
		fmt.Fprintln(m.out, report.TradeStats(m.sess.StatsSummary()))

	case "movers":
		fmt.Fprintln(m.out, report.TopMovers(m.sess.Quotes(), 5))

	case "volatility":
		if err := m.sess.TriggerVolatility(); err != nil {
			fmt.Fprintf(m.out, "volatility burst failed: %v\n", err)
		} else {
			fmt.Fprintln(m.out, "Volatility burst triggered.")
		}

	case "stop":
		fmt.Fprintln(m.out, "Stopping run.")
		return true

	default:
		fmt.Fprintf(m.out, "unknown command %q (try status, summary, movers, volatility, stop)\n", cmd)
	}
	return false
}
