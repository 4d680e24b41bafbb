package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/scottpeterman/gokilo/internal/system"
	"github.com/scottpeterman/gokilo/kilo"
)

var (
	logFile  string
	logLevel string
	banner   string
	quitKey  string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logFile, "log-file", os.Getenv("GOKILO_LOG_FILE"), "write logs to this file (env GOKILO_LOG_FILE)")
	flags.StringVar(&logLevel, "log-level", envOr("GOKILO_LOG_LEVEL", "info"), "log level: debug, info, warn, error")

	flags.StringVar(&banner, "banner", kilo.DefaultBanner(), `welcome banner shown on an empty screen ("" hides it)`)
	flags.StringVar(&quitKey, "quit-key", "q", "letter that quits together with Ctrl")
}

var rootCmd = &cobra.Command{
	Use:   "gokilo [file]",
	Short: "Minimal raw-mode text viewer",
	Long:  "gokilo puts the terminal in raw mode, shows the first line of an optional file and lets you move the cursor. Ctrl-Q quits.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseQuitKey(quitKey)
		if err != nil {
			return err
		}

		logger, closer, err := system.NewLogger(logFile, logLevel)
		if err != nil {
			return err
		}
		defer closer.Close()

		tty := kilo.NewTTY(os.Stdin, os.Stdout)
		if !tty.IsTerminal() {
			return errors.New("stdin is not a terminal")
		}

		// Raw mode turns Ctrl-C into a byte; these still arrive as signals.
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGHUP)
		defer stop()

		cfg := kilo.Config{
			Banner:     banner,
			HideBanner: banner == "",
			QuitKey:    key,
			Logger:     logger,
		}
		if len(args) == 1 {
			cfg.File = args[0]
		}
		return kilo.RunSession(ctx, tty, cfg)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gokilo: "+err.Error())
		os.Exit(1)
	}
}

// parseQuitKey turns a letter into its Ctrl byte.
func parseQuitKey(s string) (byte, error) {
	if len(s) != 1 {
		return 0, errors.Errorf("quit key must be a single letter, got %q", s)
	}
	c := s[0] | 0x20
	if c < 'a' || c > 'z' {
		return 0, errors.Errorf("quit key must be a letter, got %q", s)
	}
	return kilo.Ctrl(c), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
