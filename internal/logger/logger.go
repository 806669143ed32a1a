package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

const flags = log.Ldate | log.Ltime | log.Lshortfile

// Logger writes leveled lines. Debug output is dropped unless enabled.
type Logger struct {
	debug     *log.Logger
	info      *log.Logger
	warn      *log.Logger
	error     *log.Logger
	component string
	verbose   bool
}

func New() *Logger {
	return build(os.Stdout, os.Stderr, "", os.Getenv("ENV") != "production")
}

func NewWithWriter(writer io.Writer) *Logger {
	return build(writer, writer, "", true)
}

func build(out, errOut io.Writer, component string, verbose bool) *Logger {
	tag := ""
	if component != "" {
		tag = "[" + component + "] "
	}
	return &Logger{
		debug:     log.New(out, "DEBUG: "+tag, flags),
		info:      log.New(out, "INFO: "+tag, flags),
		warn:      log.New(errOut, "WARN: "+tag, flags),
		error:     log.New(errOut, "ERROR: "+tag, flags),
		component: component,
		verbose:   verbose,
	}
}

// With returns a child logger whose lines carry the component tag.
func (l *Logger) With(component string) *Logger {
	if l.component != "" {
		component = l.component + "." + component
	}
	return build(l.info.Writer(), l.error.Writer(), component, l.verbose)
}

func (l *Logger) Debug(v ...interface{}) {
	if l.verbose {
		l.debug.Output(2, fmt.Sprintln(v...))
	}
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.verbose {
		l.debug.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Info(v ...interface{}) {
	l.info.Output(2, fmt.Sprintln(v...))
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.info.Output(2, fmt.Sprintf(format, v...))
}

func (l *Logger) Warn(v ...interface{}) {
	l.warn.Output(2, fmt.Sprintln(v...))
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.warn.Output(2, fmt.Sprintf(format, v...))
}

func (l *Logger) Error(v ...interface{}) {
	l.error.Output(2, fmt.Sprintln(v...))
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.error.Output(2, fmt.Sprintf(format, v...))
}
