package system

import (
	"io"
	"os"

	clog "github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// NewLogger builds the application logger. The screen belongs to the
// editor while it runs, so logs only go to a file; with an empty path the
// logger discards everything. The returned closer releases the file.
func NewLogger(path, level string) (*clog.Logger, io.Closer, error) {
	lvl := clog.InfoLevel
	if level != "" {
		parsed, err := clog.ParseLevel(level)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "log level %q", level)
		}
		lvl = parsed
	}

	if path == "" {
		return clog.New(io.Discard), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file")
	}
	logger := clog.NewWithOptions(f, clog.Options{
		ReportTimestamp: true,
		Level:           lvl,
		Prefix:          "gokilo",
	})
	return logger, f, nil
}
