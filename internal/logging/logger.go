// Package logging provides the leveled console logger used by every
// command and pipeline stage, with an optional structured file sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"

	"github.com/backmassage/multiencode/internal/config"
	"github.com/backmassage/multiencode/internal/term"
)

// Logger provides leveled, optionally colored console logging. When a log
// file is configured every line is also written there as JSON through hclog.
// Safe for concurrent use by job goroutines.
type Logger struct {
	mu     *sync.Mutex // shared with loggers derived by With
	stdout io.Writer
	stderr io.Writer
	file   *os.File
	sink   hclog.Logger
}

// NewLogger configures colors from cfg and optionally opens cfg.LogFile.
// Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	l := &Logger{mu: new(sync.Mutex), stdout: os.Stdout, stderr: os.Stderr}

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		level := hclog.Info
		if cfg.Verbose {
			level = hclog.Debug
		}
		l.file = f
		l.sink = hclog.New(&hclog.LoggerOptions{
			Name:       "multiencode",
			Level:      level,
			Output:     f,
			JSONFormat: true,
		})
	}
	return l, nil
}

// New returns a console-only logger writing to the given streams. Used by
// tests and by callers that capture output.
func New(stdout, stderr io.Writer) *Logger {
	return &Logger{mu: new(sync.Mutex), stdout: stdout, stderr: stderr}
}

// With returns a logger whose file sink carries the key/value pairs on every
// entry (e.g. the run id). Console output is unchanged.
func (l *Logger) With(args ...interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	child := &Logger{mu: l.mu, stdout: l.stdout, stderr: l.stderr}
	if l.sink != nil {
		child.sink = l.sink.With(args...)
	}
	return child
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.sink = nil
		return err
	}
	return nil
}

func (l *Logger) line(level string, paint *color.Color, text string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.stdout
	if level == "ERROR" {
		out = l.stderr
	}
	_, _ = io.WriteString(out, ts+" "+paint.Sprint("["+level+"]")+" "+text+"\n")

	if l.sink == nil {
		return
	}
	switch level {
	case "ERROR":
		l.sink.Error(text)
	case "WARN":
		l.sink.Warn(text)
	case "DEBUG":
		l.sink.Debug(text)
	case "SUCCESS":
		l.sink.Info(text, "success", true)
	default:
		l.sink.Info(text)
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line("INFO", term.Blue, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.line("SUCCESS", term.Green, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line("WARN", term.Yellow, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line("ERROR", term.Red, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan) only when verbose; no-op otherwise.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.line("DEBUG", term.Cyan, fmt.Sprintf(format, args...))
}

// Blank writes an empty console line, used to separate report blocks.
func (l *Logger) Blank() {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.stdout, "\n")
}
