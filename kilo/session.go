package kilo

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// Terminal is a device whose line discipline can be switched to raw mode.
type Terminal interface {
	Device
	AttrDevice
}

// Config holds what a session needs beyond the terminal itself.
type Config struct {
	File       string // optional; first line is shown
	Banner     string // empty means DefaultBanner unless HideBanner is set
	HideBanner bool
	QuitKey    byte
	Logger     *log.Logger
}

func (c Config) options() []Option {
	var opts []Option
	switch {
	case c.HideBanner:
		opts = append(opts, WithBanner(""))
	case c.Banner != "":
		opts = append(opts, WithBanner(c.Banner))
	}
	if c.QuitKey != 0 {
		opts = append(opts, WithQuitKey(c.QuitKey))
	}
	if c.Logger != nil {
		opts = append(opts, WithLogger(c.Logger))
	}
	return opts
}

// RunSession puts term in raw mode, resolves the screen size, loads the
// configured file and runs the editor until the quit key. The terminal is
// restored on every path, and every failure leaves a cleared, homed screen.
func RunSession(ctx context.Context, term Terminal, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	err := WithRawMode(term, func() error {
		logger.Debug("raw mode enabled")

		geo, err := ResolveGeometry(term)
		if err != nil {
			clearAndHome(term)
			return err
		}
		logger.Debug("screen geometry", "rows", geo.Rows, "cols", geo.Cols)

		ed := NewEditor(term, geo, cfg.options()...)
		if cfg.File != "" {
			if err := ed.Open(cfg.File); err != nil {
				clearAndHome(term)
				return err
			}
		}
		return ed.Run(ctx)
	})
	if err != nil {
		// Failures inside fn have already cleared the screen.
		if isModeError(err) {
			clearAndHome(term)
		}
		logger.Error("session ended", "err", err)
		return err
	}
	logger.Debug("terminal restored")
	return nil
}

// isModeError reports whether err came from switching the line discipline
// rather than from the editor itself.
func isModeError(err error) bool {
	var fe *FatalError
	if !errors.As(err, &fe) {
		return false
	}
	return fe.Op == "tcgetattr" || fe.Op == "tcsetattr"
}

// clearAndHome is the best-effort screen reset used before reporting a
// fatal error.
func clearAndHome(w io.Writer) {
	w.Write(clearSequence())
}
