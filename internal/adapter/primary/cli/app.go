package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"multitimer/internal/usecase"
)

func newAppCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "app",
		Short: "Report or change the host's foreground state",
	}
	set := func(use, short string, fg bool) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := newClient()
				if err != nil {
					return err
				}
				app, err := client.SetForeground(cmd.Context(), fg)
				if err != nil {
					return err
				}
				fmt.Printf("foreground=%t\n", app.Foreground)
				return nil
			},
		}
	}
	cmd.AddCommand(
		set("foreground", "Move timers onto the per-second ticker", true),
		set("background", "Hand timers to precise wakes", false),
		&cobra.Command{
			Use:   "status",
			Short: "Show the host state",
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := newClient()
				if err != nil {
					return err
				}
				app, err := client.App(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("foreground=%t\n", app.Foreground)
				return nil
			},
		},
	)
	return cmd
}

func newEventsCmd() *cobra.Command {
	var (
		follow   bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent boundary events",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var after uint64
			for {
				entries, err := client.Events(ctx, after)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				for _, e := range entries {
					printEntry(os.Stdout, e)
					after = e.Seq
				}
				if !follow {
					return nil
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(interval):
				}
			}
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep polling for new events")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "poll interval with --follow")
	return cmd
}

func printEntry(w io.Writer, e usecase.FeedEntry) {
	ev := e.Event
	fmt.Fprintf(w, "%s  #%d %-10s %-9s %d/%d\n",
		e.At.Local().Format(time.TimeOnly), ev.TimerID, ev.Label, ev.Kind,
		ev.CurrentRepetition, ev.TotalRepetitions)
}
