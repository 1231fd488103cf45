package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Log is the process-wide logger
var Log = logrus.New()

type Entry = logrus.Entry

// Init configures Log. format is "json" or "text"; when dir is set, info
// and error records are mirrored to files in that directory.
func Init(level, format, dir string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	Log.SetLevel(lvl)
	Log.SetOutput(os.Stdout)

	switch format {
	case "json":
		Log.SetFormatter(jsonFormatter())
	case "text", "":
		Log.SetFormatter(&prefixed.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		Log.AddHook(lfshook.NewHook(lfshook.PathMap{
			logrus.InfoLevel:  filepath.Join(dir, "bicle_info.log"),
			logrus.WarnLevel:  filepath.Join(dir, "bicle_info.log"),
			logrus.ErrorLevel: filepath.Join(dir, "bicle_error.log"),
		}, jsonFormatter()))
	}

	return nil
}

func jsonFormatter() *logrus.JSONFormatter {
	return &logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	}
}

// WithPrefix returns an entry tagged with a component prefix
func WithPrefix(prefix string) *Entry {
	return Log.WithField("prefix", prefix)
}

// OrDefault returns l, or a prefixed entry of Log when l is nil.
func OrDefault(l *Entry, prefix string) *Entry {
	if l != nil {
		return l
	}
	return WithPrefix(prefix)
}
