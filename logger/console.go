package logger

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

const isWindows = runtime.GOOS == "windows"

var noColor = os.Getenv("TERM") == "dumb" ||
	(!isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()))

func color(val string) string {
	if isWindows || noColor {
		return ""
	}
	return val
}

const (
	reset      = "\033[0m"
	red        = "\033[31m"
	green      = "\033[32m"
	gray       = "\033[1;90m"
	blueBold   = "\033[34;1m"
	yellowBold = "\033[33;1m"
	cyanBold   = "\033[36;1m"
	redBold    = "\033[31;1m"
)

var levelColors = map[LogLevel]string{
	LevelTrace: cyanBold,
	LevelDebug: blueBold,
	LevelInfo:  yellowBold,
	LevelWarn:  yellowBold,
	LevelError: redBold,
}

type consoleLogger struct {
	prefixes []string
	metadata map[string]interface{}
	sink     Sink
	logLevel LogLevel
}

var _ Logger = (*consoleLogger)(nil)

func (c *consoleLogger) clone() *consoleLogger {
	prefixes := make([]string, len(c.prefixes))
	copy(prefixes, c.prefixes)
	metadata := make(map[string]interface{})
	for k, v := range c.metadata {
		metadata[k] = v
	}
	return &consoleLogger{
		prefixes: prefixes,
		metadata: metadata,
		sink:     c.sink,
		logLevel: c.logLevel,
	}
}

// With will return a new logger using metadata as the base context
func (c *consoleLogger) With(metadata map[string]interface{}) Logger {
	clone := c.clone()
	for k, v := range metadata {
		clone.metadata[k] = v
	}
	return clone
}

// WithPrefix will return a new logger with a prefix prepended to the message
func (c *consoleLogger) WithPrefix(prefix string) Logger {
	clone := c.clone()
	for _, p := range clone.prefixes {
		if p == prefix {
			return clone
		}
	}
	clone.prefixes = append(clone.prefixes, prefix)
	return clone
}

func (c *consoleLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= c.logLevel
}

func (c *consoleLogger) metadataSuffix() string {
	if len(c.metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c.metadata))
	for k := range c.metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, c.metadata[k])
	}
	return color(gray) + sb.String() + color(reset)
}

func (c *consoleLogger) log(level LogLevel, msg string, args ...interface{}) {
	if !c.IsLevelEnabled(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	var prefix string
	if len(c.prefixes) > 0 {
		prefix = color(green) + strings.Join(c.prefixes, " ") + color(reset) + " "
	}
	fmt.Fprintf(c.sink, "%s %s[%-5s]%s %s%s%s\n",
		time.Now().Format("2006-01-02 15:04:05.000"),
		color(levelColors[level]), level, color(reset),
		prefix, msg, c.metadataSuffix())
}

func (c *consoleLogger) Trace(msg string, args ...interface{}) { c.log(LevelTrace, msg, args...) }
func (c *consoleLogger) Debug(msg string, args ...interface{}) { c.log(LevelDebug, msg, args...) }
func (c *consoleLogger) Info(msg string, args ...interface{})  { c.log(LevelInfo, msg, args...) }
func (c *consoleLogger) Warn(msg string, args ...interface{})  { c.log(LevelWarn, msg, args...) }
func (c *consoleLogger) Error(msg string, args ...interface{}) { c.log(LevelError, msg, args...) }

// NewConsoleLogger returns a Logger that writes human readable lines to stdout.
func NewConsoleLogger(levels ...LogLevel) Logger {
	level := GetLevelFromEnv()
	if len(levels) > 0 {
		level = levels[0]
	}
	return &consoleLogger{
		metadata: make(map[string]interface{}),
		sink:     os.Stdout,
		logLevel: level,
	}
}
