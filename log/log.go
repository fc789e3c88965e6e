// Package log writes diagnostics to a daily file under where.Logs() through logrus.
// Nothing is written unless logs.write is set.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/scrubline/scrubline/filesystem"
	"github.com/scrubline/scrubline/key"
	"github.com/scrubline/scrubline/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var enabled bool

// Setup opens today's log file and applies logs.json and logs.level.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		logrus.SetOutput(io.Discard)
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	f, err := open(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	if err != nil {
		return err
	}
	logrus.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	return nil
}

func open(path string) (io.Writer, error) {
	f, err := filesystem.API().OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Instance is a logger tagged with the component and id of one engine or
// media surface, so that lines from a replaced instance can be told apart.
type Instance struct {
	fields logrus.Fields
}

// For returns a logger for the instance id of component.
func For(component, id string) Instance {
	return Instance{fields: logrus.Fields{"component": component, "id": id}}
}

func (i Instance) entry() *logrus.Entry {
	return logrus.WithFields(i.fields)
}

func (i Instance) Debugf(format string, args ...any) {
	if enabled {
		i.entry().Debugf(format, args...)
	}
}

func (i Instance) Infof(format string, args ...any) {
	if enabled {
		i.entry().Infof(format, args...)
	}
}

func (i Instance) Warnf(format string, args ...any) {
	if enabled {
		i.entry().Warnf(format, args...)
	}
}

func (i Instance) Errorf(format string, args ...any) {
	if enabled {
		i.entry().Errorf(format, args...)
	}
}

// Package level helpers log through the standard logrus logger.

func Error(args ...any) {
	if enabled {
		logrus.Error(args...)
	}
}

func Errorf(format string, args ...any) {
	if enabled {
		logrus.Errorf(format, args...)
	}
}

func Warn(args ...any) {
	if enabled {
		logrus.Warn(args...)
	}
}

func Warnf(format string, args ...any) {
	if enabled {
		logrus.Warnf(format, args...)
	}
}

func Info(args ...any) {
	if enabled {
		logrus.Info(args...)
	}
}

func Infof(format string, args ...any) {
	if enabled {
		logrus.Infof(format, args...)
	}
}

func Debug(args ...any) {
	if enabled {
		logrus.Debug(args...)
	}
}

func Debugf(format string, args ...any) {
	if enabled {
		logrus.Debugf(format, args...)
	}
}

func Tracef(format string, args ...any) {
	if enabled {
		logrus.Tracef(format, args...)
	}
}
