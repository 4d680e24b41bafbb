package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scottpeterman/gokilo/internal/system"
	"github.com/scottpeterman/gokilo/kilo"
	"github.com/scottpeterman/gokilo/vt"
)

var (
	snapRows  int
	snapCols  int
	snapProbe bool
	snapRaw   bool
	snapKeys  string
)

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().IntVar(&snapRows, "rows", 24, "screen rows")
	snapshotCmd.Flags().IntVar(&snapCols, "cols", 80, "screen columns")
	snapshotCmd.Flags().BoolVar(&snapProbe, "probe", false, "resolve the size through the cursor-report fallback")
	snapshotCmd.Flags().BoolVar(&snapRaw, "raw", false, "show spaces as ·")
	snapshotCmd.Flags().StringVar(&snapKeys, "keys", "", `keys to press before the snapshot, e.g. "\x1b[B\x1b[C"`)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [file]",
	Short: "Render one frame into a virtual terminal and print it",
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

		term := vt.NewTerminal(snapCols, snapRows)
		term.SetReportSize(!snapProbe)

		geo, err := kilo.ResolveGeometry(term)
		if err != nil {
			return err
		}
		logger.Debug("screen geometry", "rows", geo.Rows, "cols", geo.Cols, "probe", snapProbe)

		ed := kilo.NewEditor(term, geo,
			kilo.WithLogger(logger),
			kilo.WithBanner(banner),
			kilo.WithQuitKey(key),
		)
		if len(args) == 1 {
			if err := ed.Open(args[0]); err != nil {
				return err
			}
		}

		if err := pressKeys(cmd.Context(), term, ed, unescapeKeys(snapKeys)); err != nil {
			return err
		}
		if ed.Running() {
			if err := ed.Refresh(); err != nil {
				return err
			}
		}

		showDisplay(cmd.OutOrStdout(), term.Screen(), snapRaw)
		return nil
	},
}

// pressKeys types keys into term and feeds every decoded key to ed.
func pressKeys(ctx context.Context, term *vt.Terminal, ed *kilo.Editor, keys string) error {
	term.Type(keys)
	kr := kilo.NewKeyReader(term)
	for term.Pending() > 0 && ed.Running() {
		k, err := kr.ReadKey(ctx)
		if err != nil {
			return err
		}
		if err := ed.ProcessKey(k); err != nil {
			return err
		}
	}
	return nil
}

// unescapeKeys expands the escapes people type on a command line.
func unescapeKeys(text string) string {
	return strings.NewReplacer(
		`\x1b`, "\x1b",
		`\033`, "\x1b",
		`\e`, "\x1b",
		`\r`, "\r",
		`\n`, "\n",
		`\t`, "\t",
	).Replace(text)
}

func showDisplay(w io.Writer, screen *vt.NativeScreen, raw bool) {
	for i, line := range screen.GetDisplay() {
		if raw {
			line = strings.ReplaceAll(line, " ", "·")
		}
		fmt.Fprintf(w, "%02d│ %s\n", i, line)
	}

	x, y := screen.GetCursor()
	fmt.Fprintf(w, "Cursor: (%d,%d)  Hidden: %v\n", x, y, screen.CursorHidden())
}
