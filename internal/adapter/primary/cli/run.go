package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"multitimer/internal/domain"
	"multitimer/internal/usecase"
)

func newRunCmd() *cobra.Command {
	var (
		flags      createFlags
		background bool
		toggle     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one timer in-process and print its events until it rings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wholeSeconds(flags.main, flags.rest); err != nil {
				return err
			}
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			applyLogLevel(cfg)

			rt, err := newRuntime(clockwork.NewRealClock(), cfg, !background, false)
			if err != nil {
				return err
			}
			defer rt.alarms.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			rt.uc.Start(ctx)

			id := flags.id
			rang := make(chan struct{}, 1)
			unsubscribe := rt.uc.Subscribe(func(e usecase.FeedEntry) {
				printEntry(os.Stdout, e)
				if e.Event.Kind == domain.EventRang && e.Event.TimerID == id {
					select {
					case rang <- struct{}{}:
					default:
					}
				}
			})
			defer unsubscribe()

			spec := domain.Spec{
				ID:          id,
				Label:       flags.label,
				Main:        flags.main,
				Rest:        flags.rest,
				Repetitions: flags.reps,
				ToneID:      flags.tone,
				Vibrate:     flags.vibrate,
			}
			if err := rt.uc.Execute(ctx, usecase.CreateTimer(spec)); err != nil {
				return err
			}
			fmt.Printf("timer %d started (%s)\n", id, ownerName(rt.uc.Foreground()))

			if toggle > 0 {
				go toggleHost(ctx, rt.uc, toggle)
			}

			select {
			case <-rang:
				fmt.Println("time has elapsed")
			case <-ctx.Done():
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&background, "background", false, "drive the timer with precise wakes instead of the ticker")
	cmd.Flags().DurationVar(&toggle, "toggle", 0, "flip the host between foreground and background at this interval")
	return cmd
}

// toggleHost alternates the host state so the timer crosses between drivers.
func toggleHost(ctx context.Context, uc usecase.TimerUseCase, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fg := !uc.Foreground()
			uc.Send(usecase.AppStateChanged(fg))
			fmt.Printf("host moved to %s\n", ownerName(fg))
		}
	}
}

func ownerName(foreground bool) string {
	if foreground {
		return string(usecase.OwnerForeground)
	}
	return string(usecase.OwnerBackground)
}
