package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
)

const isWindows = runtime.GOOS == "windows"

const (
	Reset       = "\033[0m"
	Green       = "\033[32m"
	Magenta     = "\033[35m"
	Red         = "\033[31m"
	BlueBold    = "\033[34;1m"
	MagentaBold = "\033[35;1m"
	RedBold     = "\033[31;1m"
	YellowBold  = "\033[33;1m"
	WhiteBold   = "\033[37;1m"
	CyanBold    = "\033[36;1m"
	Gray        = "\033[1;90m"
	Purple      = "\u001b[38;5;200m"
)

type levelStyle struct {
	level   string
	message string
}

var styles = map[LogLevel]levelStyle{
	LevelTrace: {CyanBold, Gray},
	LevelDebug: {BlueBold, Green},
	LevelInfo:  {YellowBold, WhiteBold},
	LevelWarn:  {MagentaBold, Magenta},
	LevelError: {RedBold, Red},
}

type consoleLogger struct {
	prefixes []string
	metadata map[string]interface{}
	level    LogLevel
	out      io.Writer
	mu       *sync.Mutex
	colorize bool
	now      func() time.Time
}

var _ Logger = (*consoleLogger)(nil)

func (c *consoleLogger) clone() *consoleLogger {
	metadata := make(map[string]interface{}, len(c.metadata))
	for k, v := range c.metadata {
		metadata[k] = v
	}
	return &consoleLogger{
		prefixes: slices.Clone(c.prefixes),
		metadata: metadata,
		level:    c.level,
		out:      c.out,
		mu:       c.mu,
		colorize: c.colorize,
		now:      c.now,
	}
}

func (c *consoleLogger) color(val string) string {
	if !c.colorize {
		return ""
	}
	return val
}

// WithPrefix will return a new logger with a prefix prepended to the message
func (c *consoleLogger) WithPrefix(prefix string) Logger {
	l := c.clone()
	if !slices.Contains(l.prefixes, prefix) {
		l.prefixes = append(l.prefixes, prefix)
	}
	return l
}

func (c *consoleLogger) With(metadata map[string]interface{}) Logger {
	l := c.clone()
	for k, v := range metadata {
		l.metadata[k] = v
	}
	return l
}

func (c *consoleLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= c.level && level != LevelNone
}

func (c *consoleLogger) log(level LogLevel, msg string, args ...interface{}) {
	if !c.IsLevelEnabled(level) {
		return
	}
	style := styles[level]
	var prefix, suffix string
	if len(c.prefixes) > 0 {
		prefix = c.color(Purple) + strings.Join(c.prefixes, " ") + c.color(Reset) + " "
	}
	if len(c.metadata) > 0 {
		buf, _ := json.Marshal(c.metadata)
		suffix = " " + c.color(Gray) + string(buf) + c.color(Reset)
	}
	levelString := level.String()
	levelText := c.color(style.level) + fmt.Sprintf("[%s]%s", levelString, strings.Repeat(" ", 5-len(levelString))) + c.color(Reset)
	formatted := fmt.Sprintf(msg, args...)
	if !c.colorize {
		formatted = StripColor(formatted)
	}
	message := c.color(style.message) + formatted + c.color(Reset)
	line := fmt.Sprintf("%s %s %s%s%s\n", c.now().Format(time.RFC3339Nano), levelText, prefix, message, suffix)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, line)
}

func (c *consoleLogger) Trace(msg string, args ...interface{}) {
	c.log(LevelTrace, msg, args...)
}

func (c *consoleLogger) Debug(msg string, args ...interface{}) {
	c.log(LevelDebug, msg, args...)
}

func (c *consoleLogger) Info(msg string, args ...interface{}) {
	c.log(LevelInfo, msg, args...)
}

func (c *consoleLogger) Warn(msg string, args ...interface{}) {
	c.log(LevelWarn, msg, args...)
}

func (c *consoleLogger) Error(msg string, args ...interface{}) {
	c.log(LevelError, msg, args...)
}

// NewConsoleLogger returns a new Logger instance which will log to stderr.
// Without an explicit level the level comes from GetLevelFromEnv.
func NewConsoleLogger(levels ...LogLevel) Logger {
	level := GetLevelFromEnv()
	if len(levels) > 0 {
		level = levels[0]
	}
	colorize := !isWindows && os.Getenv("TERM") != "dumb" &&
		(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	return &consoleLogger{
		level:    level,
		out:      os.Stderr,
		mu:       &sync.Mutex{},
		colorize: colorize,
		now:      time.Now,
	}
}

// NewWriterLogger returns a Logger writing uncoloured lines to w.
func NewWriterLogger(w io.Writer, level LogLevel) Logger {
	return &consoleLogger{
		level: level,
		out:   w,
		mu:    &sync.Mutex{},
		now:   time.Now,
	}
}

// StripColor removes ANSI colour sequences from s.
func StripColor(s string) string {
	return ansiColorStripper.ReplaceAllString(s, "")
}
