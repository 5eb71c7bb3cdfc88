package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// errorLogHook appends error, fatal and panic entries to a persistent log
// with full timestamp and level.
type errorLogHook struct {
	mu        sync.Mutex
	out       io.Writer
	formatter logrus.Formatter
}

func newErrorLogHook(out io.Writer) *errorLogHook {
	return &errorLogHook{
		out:       out,
		formatter: &logrus.TextFormatter{DisableColors: true, FullTimestamp: true},
	}
}

func (h *errorLogHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

func (h *errorLogHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(line)
	return err
}

// newLogger builds the logger for one invocation. When cfg.File is set, errors
// are also appended to that file; the returned close func releases it.
func newLogger(cfg LogConfig, out io.Writer) (*logrus.Logger, func() error, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	closeFn := func() error { return nil }
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening error log: %w", err)
		}
		logger.AddHook(newErrorLogHook(f))
		closeFn = f.Close
	}
	return logger, closeFn, nil
}
