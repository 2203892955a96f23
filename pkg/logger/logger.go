package logger

import (
	"io"
	"log"
	"os"
)

type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
	debug *log.Logger
}

// New writes info and debug lines to stdout and warnings and errors to stderr.
// Debug output is enabled with LOG_LEVEL=debug.
func New() *Logger {
	debugOut := io.Discard
	if os.Getenv("LOG_LEVEL") == "debug" {
		debugOut = os.Stdout
	}
	return newWithWriters(os.Stdout, os.Stderr, debugOut)
}

func newWithWriters(out, errOut, debugOut io.Writer) *Logger {
	flags := log.Ldate | log.Ltime | log.LUTC
	return &Logger{
		info:  log.New(out, "INFO: ", flags),
		warn:  log.New(errOut, "WARN: ", flags),
		error: log.New(errOut, "ERROR: ", flags),
		debug: log.New(debugOut, "DEBUG: ", flags),
	}
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.info.Printf(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.warn.Printf(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.error.Printf(format, v...)
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.debug.Printf(format, v...)
}
