// Package logger wraps a zap SugaredLogger and scrubs sensitive fields from every
// key/value pair before it is written.
package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	z     *zap.SugaredLogger
	scrub scrubber
}

// New builds a zap logger. mode "prod" selects the JSON production preset; anything
// else gets the development console encoder. LOG_LEVEL overrides the debug default,
// LOG_REDACTION_ENABLED=false turns scrubbing off and LOG_HASH_SALT salts hashed ids.
func New(mode string) (*Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if m := strings.ToLower(strings.TrimSpace(mode)); m == "prod" || m == "production" {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(os.Getenv("LOG_LEVEL")))
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &Logger{z: z.Sugar(), scrub: scrubberFromEnv()}, nil
}

func Nop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

func parseLevel(raw string) zapcore.Level {
	lvl := zapcore.DebugLevel
	if raw = strings.TrimSpace(raw); raw != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(raw))); err != nil {
			return zapcore.DebugLevel
		}
	}
	return lvl
}

func (l *Logger) Sync() { _ = l.z.Sync() }

func (l *Logger) Debug(msg string, kv ...any) { l.z.Debugw(msg, l.scrub.apply(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.z.Infow(msg, l.scrub.apply(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.z.Warnw(msg, l.scrub.apply(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.z.Errorw(msg, l.scrub.apply(kv)...) }
func (l *Logger) Fatal(msg string, kv ...any) { l.z.Fatalw(msg, l.scrub.apply(kv)...) }

func (l *Logger) With(kv ...any) *Logger {
	return &Logger{z: l.z.With(l.scrub.apply(kv)...), scrub: l.scrub}
}

const redacted = "[REDACTED]"

var (
	secretKeys = []string{"token", "authorization", "password", "secret", "cookie", "api_key", "apikey", "email"}
	// ids stay correlatable across lines without being logged in the clear
	hashedKeys = []string{"user_id", "owner_id"}
)

type scrubber struct {
	enabled bool
	salt    string
}

func scrubberFromEnv() scrubber {
	s := scrubber{enabled: true, salt: strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		s.enabled = false
	}
	return s
}

// apply rewrites values in a zap key/value list. A trailing key without a value is
// kept as is.
func (s scrubber) apply(kv []any) []any {
	if !s.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]any, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i+1] = s.value(normKey(out[i]), out[i+1])
	}
	return out
}

func (s scrubber) value(key string, v any) any {
	if key == "" {
		return v
	}
	if containsAny(key, secretKeys) {
		return redacted
	}
	if containsAny(key, hashedKeys) {
		return s.hash(v)
	}
	if m, ok := v.(map[string]any); ok {
		clean := make(map[string]any, len(m))
		for k, inner := range m {
			clean[k] = s.value(normKey(k), inner)
		}
		return clean
	}
	return v
}

func (s scrubber) hash(v any) string {
	raw := stringify(v)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func normKey(k any) string { return strings.ToLower(stringify(k)) }

func containsAny(key string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(key, n) {
			return true
		}
	}
	return false
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
