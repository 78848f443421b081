package env

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dugoutlabs/go-dugout/logger"
	"github.com/spf13/cobra"
	"github.com/xhit/go-str2duration/v2"
)

type EnvLine struct {
	Key string `json:"key"`
	Val string `json:"val"`
}

// ParseEnvFile parses an environment file and returns a list of EnvLine structs.
// A missing file is not an error; it returns an empty list.
func ParseEnvFile(filename string) ([]EnvLine, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return []EnvLine{}, nil
	}
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseEnvBuffer(buf)
}

// ParseEnvBuffer parses env file content. Blank lines and # comments are skipped.
func ParseEnvBuffer(buf []byte) ([]EnvLine, error) {
	envs := make([]EnvLine, 0)
	for _, line := range strings.Split(string(buf), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		env := ProcessEnvLine(line)
		if env.Key != "" {
			envs = append(envs, env)
		}
	}
	return envs, nil
}

func dequote(s string) string {
	v := s
	if strings.HasPrefix(v, "'") && strings.HasSuffix(v, "'") {
		v = strings.TrimLeft(v, "'")
		v = strings.TrimRight(v, "'")
	} else if strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = strings.TrimLeft(v, `"`)
		v = strings.TrimRight(v, `"`)
	}
	return v
}

// ProcessEnvLine processes an environment variable line and returns an EnvLine struct.
func ProcessEnvLine(env string) EnvLine {
	tok := strings.SplitN(env, "=", 2)
	if len(tok) < 2 {
		return EnvLine{Key: env, Val: ""}
	}
	return EnvLine{Key: tok[0], Val: dequote(tok[1])}
}

// Apply sets every parsed line into the process environment, without
// overriding variables that are already set.
func Apply(envs []EnvLine) {
	for _, env := range envs {
		if _, ok := os.LookupEnv(env.Key); !ok {
			os.Setenv(env.Key, env.Val)
		}
	}
}

// String returns the environment value for key or defaultValue when unset.
func String(key string, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultValue
}

// Bool returns the boolean environment value for key or defaultValue when
// unset or unparseable.
func Bool(key string, defaultValue bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

// Int returns the integer environment value for key or defaultValue when
// unset or unparseable.
func Int(key string, defaultValue int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

// Duration returns the duration environment value for key or defaultValue
// when unset or unparseable. Values use the extended duration syntax, so
// `3h`, `90m` and `1d12h` all work.
func Duration(key string, defaultValue time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := str2duration.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultValue
}

// FlagOrEnv resolves a string setting from a cobra flag first, then the
// environment, then the default.
func FlagOrEnv(cmd *cobra.Command, flagName string, envName string, defaultValue string) string {
	flagValue, _ := cmd.Flags().GetString(flagName)
	if flagValue != "" {
		return flagValue
	}
	return String(envName, defaultValue)
}

// LogLevel resolves the logger level from the log-level flag or DUGOUT_LOG_LEVEL.
func LogLevel(cmd *cobra.Command) logger.LogLevel {
	switch strings.ToLower(FlagOrEnv(cmd, "log-level", "DUGOUT_LOG_LEVEL", "info")) {
	case "trace":
		return logger.LevelTrace
	case "debug":
		return logger.LevelDebug
	case "warn":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	}
	return logger.LevelInfo
}

// NewLogger returns a console logger configured from the cobra.Command
// log-level flag, falling back to the DUGOUT_LOG_LEVEL environment value.
func NewLogger(cmd *cobra.Command) logger.Logger {
	log.SetFlags(0)
	return logger.NewConsoleLogger(LogLevel(cmd))
}
