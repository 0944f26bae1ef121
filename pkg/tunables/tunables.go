// Package tunables provides read-only access to remotely managed tunables:
// model names, sampling parameters, thresholds, retry limits, and feature
// flags. Every lookup carries an explicit default so a missing key degrades
// to known behavior instead of failing.
package tunables

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider is a plain key to raw-value lookup. Implementations never write;
// the pipeline only consumes configuration.
type Provider interface {
	Lookup(key string) (string, bool)
}

// Static is a fixed in-memory provider, used for defaults and in tests.
type Static map[string]string

// Lookup returns the value for key if present.
func (s Static) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Env resolves keys against environment variables: "ai.visual.model" with
// prefix "TYPEVAULT" becomes TYPEVAULT_AI_VISUAL_MODEL.
type Env struct {
	Prefix string
}

// Lookup returns the environment value for the mapped variable name.
func (e Env) Lookup(key string) (string, bool) {
	name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	if e.Prefix != "" {
		name = e.Prefix + "_" + name
	}
	v := os.Getenv(name)
	return v, v != ""
}

// Layered queries providers in order; the first hit wins.
type Layered []Provider

// Lookup returns the first provider's value for key.
func (l Layered) Lookup(key string) (string, bool) {
	for _, p := range l {
		if v, ok := p.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// String returns the value for key, or def when absent.
func String(p Provider, key, def string) string {
	if v, ok := p.Lookup(key); ok {
		return v
	}
	return def
}

// Int returns the value for key parsed as an int, or def when absent or unparseable.
func Int(p Provider, key string, def int) int {
	if v, ok := p.Lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Float returns the value for key parsed as a float64, or def when absent or unparseable.
func Float(p Provider, key string, def float64) float64 {
	if v, ok := p.Lookup(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Bool returns the value for key parsed as a bool, or def when absent or unparseable.
func Bool(p Provider, key string, def bool) bool {
	if v, ok := p.Lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Duration returns the value for key parsed as a time.Duration, or def when
// absent or unparseable.
func Duration(p Provider, key string, def time.Duration) time.Duration {
	if v, ok := p.Lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
