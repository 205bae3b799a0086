package app

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/gymore-io/winput/pkg/events"
)

// recordedEvent is one entry of the YAML event log written by --record.
type recordedEvent struct {
	Time  time.Time    `yaml:"time"`
	Type  events.Type  `yaml:"type"`
	Event events.Event `yaml:"event"`
}

// NewWatchCommand creates the watch command.
func (a *App) NewWatchCommand() *cobra.Command {
	var (
		recordPath string
		duration   time.Duration
		count      int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Capture input and print each event",
		Long: `Watch captures keyboard and mouse input and prints one line per
event until interrupted, --duration elapses, or --count events arrived.

With --record the captured events are additionally written to a YAML
file on exit, one entry per event with its arrival timestamp.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWatch(cmd, recordPath, duration, count)
		},
	}

	cmd.Flags().StringVar(&recordPath, "record", "", "write captured events to this YAML file on exit")
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long (0 means run until interrupted)")
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many events (0 means unlimited)")

	return cmd
}

func (a *App) runWatch(cmd *cobra.Command, recordPath string, duration time.Duration, count int) error {
	client, err := a.Client()
	if err != nil {
		return err
	}

	receiver, err := client.Start()
	if err != nil {
		return fmt.Errorf("starting capture: %w", err)
	}
	a.logger.Info().Msg("Capturing input; press Ctrl+C to stop")

	var deadline time.Time
	if duration > 0 {
		deadline = time.Now().Add(duration)
	}

	ctx := cmd.Context()
	var (
		recorded []recordedEvent
		seen     int
	)

	for {
		if ctx.Err() != nil {
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}

		e, ok := receiver.NextTimeout(100 * time.Millisecond)
		if !ok {
			continue
		}

		fmt.Fprintln(cmd.OutOrStdout(), formatEvent(e))
		if recordPath != "" {
			recorded = append(recorded, recordedEvent{
				Time:  time.Now(),
				Type:  e.Type(),
				Event: e,
			})
		}

		seen++
		if count > 0 && seen >= count {
			break
		}
	}

	if err := receiver.Stop(); err != nil {
		a.logger.Warn().Err(err).Msg("Stopping capture reported an error")
	}

	if recordPath != "" {
		if err := writeRecord(recordPath, recorded); err != nil {
			return fmt.Errorf("writing event log: %w", err)
		}
		a.logger.Info().Str("path", recordPath).Int("events", len(recorded)).Msg("Event log written")
	}

	return nil
}

// writeRecord marshals the captured events to YAML and writes them out.
func writeRecord(path string, recorded []recordedEvent) error {
	data, err := yaml.Marshal(recorded)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// formatEvent renders one event as a human-readable line.
func formatEvent(e events.Event) string {
	switch ev := e.(type) {
	case events.Keyboard:
		return fmt.Sprintf("keyboard  %-9s %s (scan %d)", ev.Key, ev.Action, ev.ScanCode)
	case events.MouseMoveRelative:
		return fmt.Sprintf("mouse     move dx=%d dy=%d", ev.DX, ev.DY)
	case events.MouseMoveAbsolute:
		return fmt.Sprintf("mouse     move x=%.4f y=%.4f", ev.X, ev.Y)
	case events.MouseButton:
		return fmt.Sprintf("mouse     %s %s", ev.Button, ev.Action)
	case events.MouseWheel:
		return fmt.Sprintf("wheel     %s %+.1f", ev.Direction, ev.Delta)
	default:
		return string(e.Type())
	}
}
