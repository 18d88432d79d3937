// Package logging writes per-run execution logs.
//
// Every run gets its own JSON log file under the logs directory. The message
// and every text-like field pass through Redact before they reach the file.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RunLog is the execution log of a single kickoff.
type RunLog struct {
	Logger *zap.Logger
	Path   string // empty when no file is written
	file   *os.File
}

// Options configures Open.
type Options struct {
	// Dir is the logs directory. Empty disables the log file.
	Dir string
	// Debug mirrors entries at debug level to Console.
	Debug   bool
	Console io.Writer
	// Now is used for the file name; defaults to time.Now.
	Now func() time.Time
}

// Open creates the log file for a run. The directory is created 0700 and the
// file 0600 so only the owner can read prompts and outputs.
func Open(opts Options) (*RunLog, error) {
	var cores []zapcore.Core
	rl := &RunLog{}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		path := filepath.Join(opts.Dir, fmt.Sprintf("crew-%s.log", now().Format("20060102150405")))

		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		rl.file = file
		rl.Path = path

		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), zapcore.DebugLevel))
	}

	if opts.Debug && opts.Console != nil {
		encCfg := zap.NewDevelopmentEncoderConfig()
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(opts.Console), zapcore.DebugLevel))
	}

	if len(cores) == 0 {
		rl.Logger = zap.NewNop()
		return rl, nil
	}

	rl.Logger = zap.New(&redactingCore{Core: zapcore.NewTee(cores...)})
	return rl, nil
}

// Close flushes the logger and closes the log file.
func (rl *RunLog) Close() error {
	if rl == nil {
		return nil
	}
	_ = rl.Logger.Sync()
	if rl.file == nil {
		return nil
	}
	return rl.file.Close()
}

// redactingCore scrubs secrets from messages and string fields.
type redactingCore struct {
	zapcore.Core
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(redactFields(fields))}
}

func (c *redactingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent.Message = Redact(ent.Message)
	return c.Core.Write(ent, redactFields(fields))
}

func redactFields(fields []zapcore.Field) []zapcore.Field {
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		out[i] = redactField(f)
	}
	return out
}

// redactField flattens errors, stringers and reflected values to redacted strings.
func redactField(f zapcore.Field) zapcore.Field {
	switch f.Type {
	case zapcore.StringType:
		f.String = Redact(f.String)
	case zapcore.ByteStringType:
		if b, ok := f.Interface.([]byte); ok {
			return zap.String(f.Key, Redact(string(b)))
		}
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok && err != nil {
			return zap.String(f.Key, Redact(err.Error()))
		}
	case zapcore.StringerType:
		if s, ok := f.Interface.(fmt.Stringer); ok && s != nil {
			return zap.String(f.Key, Redact(s.String()))
		}
	case zapcore.ReflectType:
		b, err := json.Marshal(f.Interface)
		if err != nil {
			return zap.String(f.Key, Redact(fmt.Sprintf("%+v", f.Interface)))
		}
		return zap.String(f.Key, Redact(string(b)))
	}
	return f
}
