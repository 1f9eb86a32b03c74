package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"multitimer/internal/config"
	"multitimer/internal/logging"
)

var (
	cfgPath   string
	addrFlag  string
	verbosity int
)

// NewRootCmd creates the root CLI command.
// This is the primary adapter that translates CLI inputs to use case calls.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "multitimer",
		Short:        "Interval timers with work/rest repetitions",
		Long:         "Timer server + HTTP API + CLI. Timers tick every second while the host is in the foreground and fall back to precise wakes in the background.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path")
	cmd.PersistentFlags().StringVar(&addrFlag, "addr", "", "server address host:port (overrides config)")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase logging (-v, -vv, ... up to 4)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.SetVerbosity(verbosity)
	}

	cmd.AddCommand(
		newServeCmd(),
		newRunCmd(),
		newTimerCmd(),
		newAppCmd(),
		newEventsCmd(),
		newConfigCmd(),
		newShellCmd(),
	)

	return cmd
}

// loadConfig reads and normalizes the config file, applying --addr.
func loadConfig() (config.Config, *config.FileStore, error) {
	store, err := config.NewFileStore(cfgPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := store.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if addrFlag != "" {
		cfg.Addr = addrFlag
	}
	cfg, err = config.Normalize(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, store, nil
}

// applyLogLevel uses the configured level unless -v was given.
func applyLogLevel(cfg config.Config) {
	if verbosity > 0 {
		return
	}
	if _, count, err := logging.ParseLevel(cfg.LogLevel); err == nil {
		logging.SetVerbosity(count)
	}
}

func newShellCmd() *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell for the subcommands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveShell(prompt)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "multitimer> ", "shell prompt")
	return cmd
}

func runInteractiveShell(prompt string) error {
	historyFile := filepath.Join(os.TempDir(), "multitimer-shell.history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	sessionVerbosity := verbosity
	fmt.Println("Interactive shell. 'help' for usage, 'exit' to quit.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println()
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch line {
		case "exit", "quit":
			fmt.Println("Bye!")
			return nil
		case "help":
			printShellHelp()
			continue
		}
		tokens, err := shlex.Split(line)
		if err != nil {
			fmt.Printf("Parse error: %v\n", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		if tokens[0] == "log" {
			if err := handleShellLog(tokens[1:], &sessionVerbosity); err != nil {
				fmt.Printf("log: %v\n", err)
			}
			continue
		}
		if tokens[0] == "shell" {
			fmt.Println("Already in the shell. Enter another command or 'exit'.")
			continue
		}

		verbosity = sessionVerbosity
		if err := executeArgs(tokens); err != nil {
			fmt.Printf("command error: %v\n", err)
		}
		sessionVerbosity = verbosity
	}
}

func executeArgs(args []string) error {
	if len(args) == 0 {
		return nil
	}
	root := NewRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func handleShellLog(args []string, sessionVerbosity *int) error {
	fs := pflag.NewFlagSet("log", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var vcount int
	var level string
	var show bool
	fs.CountVarP(&vcount, "verbose", "v", "Increase verbosity (-v... up to 4)")
	fs.StringVar(&level, "level", "", "level (error|warn|info|debug|trace)")
	fs.BoolVarP(&show, "show", "s", false, "show the current level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case show && vcount == 0 && level == "":
		fmt.Printf("log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	case level != "":
		_, count, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		*sessionVerbosity = count
	case vcount > 0:
		*sessionVerbosity = vcount
	default:
		fmt.Printf("log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	}

	verbosity = *sessionVerbosity
	logging.SetVerbosity(*sessionVerbosity)
	fmt.Printf("log level set to %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
	return nil
}

func printShellHelp() {
	fmt.Println(`Examples:
  timer create --label tabata --main 20s --rest 10s --reps 8
  timer list                    # timers held by the server
  timer pause 1 / timer resume 1
  timer ack 1                   # dismiss a ringing timer
  timer delete 1
  app background                # hand timers to precise wakes
  app foreground                # back to the per-second ticker
  events                        # recent boundary events
  config get / config set notifier osascript
  log -vv                       # more logging
  log --show                    # current log level
  exit / quit                   # leave the shell`)
}
