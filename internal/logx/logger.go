// Package logx builds the process-wide slog logger from config and
// environment, writing to stdout and/or a rotating file.
package logx

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Mavwarf/webshell/internal/config"
	"github.com/Mavwarf/webshell/internal/paths"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLevel         = "info"
	defaultFormat        = "text"
	defaultOutput        = "stdout"
	defaultMaxSizeMB     = 10
	defaultMaxBackups    = 3
	defaultMaxAgeDays    = 14
	envLogLevel          = "LOG_LEVEL"
	envLogFormat         = "LOG_FORMAT"
	envLogOutput         = "LOG_OUTPUT"
	envLogFilePath       = "LOG_FILE_PATH"
	envLogFileMaxSizeMB  = "LOG_FILE_MAX_SIZE_MB"
	envLogFileMaxBackups = "LOG_FILE_MAX_BACKUPS"
	envLogFileMaxAgeDays = "LOG_FILE_MAX_AGE_DAYS"
)

type Config struct {
	Level      slog.Level
	Format     string
	Output     string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// LoadConfig merges the file settings with environment overrides.
// Environment wins.
func LoadConfig(c config.Log) Config {
	return Config{
		Level:      parseLevel(getenv(envLogLevel, orDefault(c.Level, defaultLevel))),
		Format:     normalizeFormat(getenv(envLogFormat, orDefault(c.Format, defaultFormat))),
		Output:     normalizeOutput(getenv(envLogOutput, orDefault(c.Output, defaultOutput))),
		FilePath:   getenv(envLogFilePath, orDefault(c.File, filepath.Join(paths.DataDir(), paths.LogFileName))),
		MaxSizeMB:  getenvInt(envLogFileMaxSizeMB, orDefaultInt(c.MaxSizeMB, defaultMaxSizeMB)),
		MaxBackups: getenvInt(envLogFileMaxBackups, orDefaultInt(c.MaxBackups, defaultMaxBackups)),
		MaxAgeDays: getenvInt(envLogFileMaxAgeDays, orDefaultInt(c.MaxAgeDays, defaultMaxAgeDays)),
	}
}

// Init installs the default slog logger and returns it with a closer for
// the log file.
func Init(c config.Log) (*slog.Logger, func() error, error) {
	cfg := LoadConfig(c)
	writer, closer, err := buildWriter(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(buildHandler(cfg, writer))
	slog.SetDefault(logger)
	return logger, closer, nil
}

func buildHandler(cfg Config, writer io.Writer) slog.Handler {
	options := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == "json" {
		return slog.NewJSONHandler(writer, options)
	}
	return slog.NewTextHandler(writer, options)
}

func buildWriter(cfg Config) (io.Writer, func() error, error) {
	useStdout := strings.Contains(cfg.Output, "stdout")
	useFile := strings.Contains(cfg.Output, "file")

	writers := make([]io.Writer, 0, 2)
	var closers []io.Closer

	if useStdout {
		writers = append(writers, os.Stdout)
	}

	if useFile {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), paths.DirPerm); err != nil {
			return nil, nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		writers = append(writers, rotator)
		closers = append(closers, rotator)
	}

	closeFn := func() error {
		var lastErr error
		for _, c := range closers {
			if err := c.Close(); err != nil {
				lastErr = err
			}
		}
		return lastErr
	}

	if len(writers) == 1 {
		return writers[0], closeFn, nil
	}
	return io.MultiWriter(writers...), closeFn, nil
}

func normalizeFormat(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "json":
		return "json"
	default:
		return "text"
	}
}

func normalizeOutput(v string) string {
	out := strings.ToLower(strings.ReplaceAll(v, " ", ""))
	switch out {
	case "stdout", "file", "stdout,file", "file,stdout":
		return out
	default:
		return defaultOutput
	}
}

func parseLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
