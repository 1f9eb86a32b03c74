package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"multitimer/internal/adapter/primary/web"
	"multitimer/internal/usecase"
)

func newClient() (*web.Client, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return web.NewClient(cfg.Addr), nil
}

func newTimerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Create and control timers on a running server",
	}
	cmd.AddCommand(
		newTimerCreateCmd(),
		newTimerListCmd(),
		newTimerIDCmd("delete", "Delete a timer", usecase.CommandDeleteTimer),
		newTimerIDCmd("stop", "Stop a timer", usecase.CommandStopTimer),
		newTimerIDCmd("pause", "Pause a running timer", usecase.CommandPauseTimer),
		newTimerIDCmd("resume", "Resume a paused timer", usecase.CommandResumeTimer),
		newTimerIDCmd("ack", "Acknowledge a ringing timer", usecase.CommandAcknowledge),
	)
	return cmd
}

type createFlags struct {
	id      int
	label   string
	main    time.Duration
	rest    time.Duration
	reps    int
	tone    string
	vibrate bool
}

func (f *createFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.id, "id", 0, "timer id (default: next free id)")
	cmd.Flags().StringVar(&f.label, "label", "Timer", "label shown in notifications")
	cmd.Flags().DurationVar(&f.main, "main", 0, "work phase, whole seconds e.g. 45s, 25m")
	cmd.Flags().DurationVar(&f.rest, "rest", 0, "rest phase between repetitions (0 for none)")
	cmd.Flags().IntVar(&f.reps, "reps", 1, "number of repetitions")
	cmd.Flags().StringVar(&f.tone, "tone", "default", "ring tone ('none' for silent)")
	cmd.Flags().BoolVar(&f.vibrate, "vibrate", false, "vibrate on notifications")
	_ = cmd.MarkFlagRequired("main")
}

func (f *createFlags) request(cmd *cobra.Command) web.CreateJSON {
	req := web.CreateJSON{
		Label:       f.label,
		MainSeconds: int64(f.main / time.Second),
		RestSeconds: int64(f.rest / time.Second),
		Repetitions: f.reps,
		Tone:        f.tone,
		Vibrate:     f.vibrate,
	}
	if cmd.Flags().Changed("id") {
		id := f.id
		req.ID = &id
	}
	return req
}

func newTimerCreateCmd() *cobra.Command {
	var flags createFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a new timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wholeSeconds(flags.main, flags.rest); err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			t, err := client.Create(cmd.Context(), flags.request(cmd))
			if err != nil {
				return err
			}
			fmt.Printf("created timer %d (%s, %s)\n", t.ID, t.Label, t.Owner)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newTimerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List timers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			timers, err := client.Timers(cmd.Context())
			if err != nil {
				return err
			}
			printTimers(os.Stdout, timers)
			return nil
		},
	}
}

func newTimerIDCmd(use, short string, typ usecase.CommandType) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid timer id %q", args[0])
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			if err := client.Command(cmd.Context(), typ, id); err != nil {
				return err
			}
			fmt.Printf("%s sent for timer %d\n", use, id)
			return nil
		},
	}
}

func wholeSeconds(ds ...time.Duration) error {
	for _, d := range ds {
		if d%time.Second != 0 {
			return fmt.Errorf("%s is not a whole number of seconds", d)
		}
	}
	return nil
}

func printTimers(w io.Writer, timers []web.TimerJSON) {
	if len(timers) == 0 {
		fmt.Fprintln(w, "no timers")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tSTATE\tLEFT\tREP\tOWNER\tWAKE")
	for _, t := range timers {
		left := t.RemainingMainSeconds
		if strings.HasPrefix(t.State, "Rest") {
			left = t.RemainingRestSeconds
		}
		wake := "-"
		if t.WakeAt != nil {
			wake = t.WakeAt.Local().Format(time.TimeOnly)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			t.ID, t.Label, t.State, time.Duration(left)*time.Second,
			t.CurrentRepetition, t.TotalRepetitions, t.Owner, wake)
	}
	tw.Flush()
}
