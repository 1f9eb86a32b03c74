package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"multitimer/internal/adapter/primary/web"
	"multitimer/internal/adapter/secondary/alarm"
	"multitimer/internal/adapter/secondary/notify"
	"multitimer/internal/adapter/secondary/repository"
	"multitimer/internal/config"
	"multitimer/internal/domain"
	"multitimer/internal/logging"
	"multitimer/internal/usecase"
)

// runtime is a fully wired timer service with its wake facility.
type runtime struct {
	uc     usecase.TimerUseCase
	alarms *alarm.Scheduler
}

// newRuntime wires the service to the configured adapters. persist selects
// whether pending wakes are mirrored to the wake store.
func newRuntime(clk clockwork.Clock, cfg config.Config, foreground, persist bool) (*runtime, error) {
	var repo domain.WakeRepository
	if persist {
		fr, err := repository.NewFileRepository(cfg.WakeStore)
		if err != nil {
			return nil, err
		}
		repo = fr
	}
	alarms := alarm.NewScheduler(clk, repo)

	sink, err := notify.New(cfg.Notifier)
	if err != nil {
		return nil, err
	}
	uc, err := usecase.NewTimerService(clk, alarms, sink, usecase.ServiceOptions{Foreground: foreground})
	if err != nil {
		return nil, err
	}
	alarms.OnWake(uc.HandleWake)
	return &runtime{uc: uc, alarms: alarms}, nil
}

// restore adopts the wakes a previous run left behind and rewrites the store
// so a wake consumed here is not offered to the next run. Call it before the
// service starts.
func (rt *runtime) restore() (int, error) {
	stored, err := rt.alarms.Stored()
	if err != nil {
		return 0, err
	}
	n := rt.uc.Restore(stored)
	return n, rt.alarms.Sync()
}

func newServeCmd() *cobra.Command {
	var (
		background bool
		noRestore  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the timer service and the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			applyLogLevel(cfg)

			foreground := cfg.StartForeground
			if cmd.Flags().Changed("background") {
				foreground = !background
			}
			rt, err := newRuntime(clockwork.NewRealClock(), cfg, foreground, true)
			if err != nil {
				return err
			}
			defer rt.alarms.Close()

			if noRestore {
				if err := rt.alarms.Sync(); err != nil {
					logging.Warnf("wake store: %v", err)
				}
			} else if _, err := rt.restore(); err != nil {
				logging.Warnf("wake store: %v", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			rt.uc.Start(ctx)
			srv := web.NewServer(rt.uc, cfg.Addr)
			fmt.Printf("multitimer running at http://%s (foreground=%t)\n", cfg.Addr, foreground)
			logging.Infof("multitimer: http://%s notifier=%s", cfg.Addr, cfg.Notifier)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&background, "background", false, "start with the host in the background")
	cmd.Flags().BoolVar(&noRestore, "no-restore", false, "ignore wakes left by a previous run")
	return cmd
}
