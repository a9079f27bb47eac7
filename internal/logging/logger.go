package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// maxValueLen caps string values so raw LLM output cannot flood the log.
const maxValueLen = 2000

// Logger is a structured key/value logger backed by zap.
// A nil *Logger is valid and discards everything.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a logger for the given mode ("dev" or "prod").
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &Logger{sugar: z.Sugar()}, nil
}

// Nop returns a logger that discards all output.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{sugar: z.Sugar()}
}

func (l *Logger) Debug(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.sugar.Debugw(msg, sanitize(kv)...)
}

func (l *Logger) Info(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.sugar.Infow(msg, sanitize(kv)...)
}

func (l *Logger) Warn(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.sugar.Warnw(msg, sanitize(kv)...)
}

func (l *Logger) Error(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.sugar.Errorw(msg, sanitize(kv)...)
}

// With returns a child logger that always carries the given pairs.
func (l *Logger) With(kv ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{sugar: l.sugar.With(sanitize(kv)...)}
}

// Sync flushes buffered entries. Errors are ignored; stderr sync
// commonly fails on terminals.
func (l *Logger) Sync() {
	if l == nil {
		return
	}
	_ = l.sugar.Sync()
}

func sanitize(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := fmt.Sprint(kv[i])
		out = append(out, key, sanitizeValue(strings.ToLower(key), kv[i+1]))
	}
	return out
}

func sanitizeValue(key string, val any) any {
	if isSecretKey(key) {
		return "[REDACTED]"
	}
	if s, ok := val.(string); ok && len(s) > maxValueLen {
		return s[:maxValueLen] + "…"
	}
	return val
}

// isSecretKey matches on whole key segments so counters such as
// "input_tokens" are not redacted.
func isSecretKey(key string) bool {
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' || r == '.' })
	for i, p := range parts {
		switch p {
		case "apikey", "token", "secret", "password", "authorization":
			return true
		case "api":
			if i+1 < len(parts) && parts[i+1] == "key" {
				return true
			}
		}
	}
	return false
}
