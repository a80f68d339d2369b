package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

// Each getter returns def when the variable is unset or unparsable. A non-nil log
// records which default was used.

func String(name, def string, log *logger.Logger) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		logDefault(log, name, def)
		return def
	}
	return v
}

func Int(name string, def int, log *logger.Logger) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		logDefault(log, name, def)
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logInvalid(log, name, v, def)
		return def
	}
	return i
}

func Float(name string, def float64, log *logger.Logger) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		logDefault(log, name, def)
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logInvalid(log, name, v, def)
		return def
	}
	return f
}

func Bool(name string, def bool, log *logger.Logger) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch v {
	case "":
		logDefault(log, name, def)
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		logInvalid(log, name, v, def)
		return def
	}
}

func Duration(name string, def time.Duration, log *logger.Logger) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		logDefault(log, name, def)
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logInvalid(log, name, v, def)
		return def
	}
	return d
}

func logDefault(log *logger.Logger, name string, def interface{}) {
	if log != nil {
		log.Debug("env not set, using default", "name", name, "default", def)
	}
}

func logInvalid(log *logger.Logger, name, raw string, def interface{}) {
	if log != nil {
		log.Warn("env value invalid, using default", "name", name, "value", raw, "default", def)
	}
}
