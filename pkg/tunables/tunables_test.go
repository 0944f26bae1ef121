package tunables_test

import (
	"testing"
	"time"

	"github.com/typevault/typevault/pkg/tunables"
)

func TestTypedAccessors(t *testing.T) {
	p := tunables.Static{
		"str":      "hello",
		"int":      "42",
		"float":    "0.75",
		"bool":     "true",
		"duration": "1500ms",
		"garbage":  "not-a-number",
	}

	t.Run("string present", func(t *testing.T) {
		if got := tunables.String(p, "str", "def"); got != "hello" {
			t.Errorf("String = %q, want hello", got)
		}
	})

	t.Run("string absent uses default", func(t *testing.T) {
		if got := tunables.String(p, "missing", "def"); got != "def" {
			t.Errorf("String = %q, want def", got)
		}
	})

	t.Run("int present", func(t *testing.T) {
		if got := tunables.Int(p, "int", 7); got != 42 {
			t.Errorf("Int = %d, want 42", got)
		}
	})

	t.Run("int unparseable uses default", func(t *testing.T) {
		if got := tunables.Int(p, "garbage", 7); got != 7 {
			t.Errorf("Int = %d, want 7", got)
		}
	})

	t.Run("float present", func(t *testing.T) {
		if got := tunables.Float(p, "float", 0.1); got != 0.75 {
			t.Errorf("Float = %v, want 0.75", got)
		}
	})

	t.Run("bool present", func(t *testing.T) {
		if !tunables.Bool(p, "bool", false) {
			t.Error("Bool = false, want true")
		}
	})

	t.Run("bool unparseable uses default", func(t *testing.T) {
		if !tunables.Bool(p, "garbage", true) {
			t.Error("Bool = false, want default true")
		}
	})

	t.Run("duration present", func(t *testing.T) {
		if got := tunables.Duration(p, "duration", time.Second); got != 1500*time.Millisecond {
			t.Errorf("Duration = %v, want 1.5s", got)
		}
	})

	t.Run("duration absent uses default", func(t *testing.T) {
		if got := tunables.Duration(p, "missing", time.Second); got != time.Second {
			t.Errorf("Duration = %v, want 1s", got)
		}
	})
}

func TestLayeredFirstHitWins(t *testing.T) {
	layered := tunables.Layered{
		tunables.Static{"shared": "top", "only-top": "a"},
		tunables.Static{"shared": "bottom", "only-bottom": "b"},
	}

	if got := tunables.String(layered, "shared", ""); got != "top" {
		t.Errorf("shared = %q, want top", got)
	}
	if got := tunables.String(layered, "only-top", ""); got != "a" {
		t.Errorf("only-top = %q, want a", got)
	}
	if got := tunables.String(layered, "only-bottom", ""); got != "b" {
		t.Errorf("only-bottom = %q, want b", got)
	}
	if _, ok := layered.Lookup("absent"); ok {
		t.Error("Lookup(absent) = ok, want miss")
	}
}

func TestEnvLookup(t *testing.T) {
	t.Setenv("TYPEVAULT_AI_VISUAL_MODEL", "test-model")

	env := tunables.Env{Prefix: "TYPEVAULT"}

	if got := tunables.String(env, "ai.visual.model", "def"); got != "test-model" {
		t.Errorf("env lookup = %q, want test-model", got)
	}
	if got := tunables.String(env, "ai.enrich.model", "def"); got != "def" {
		t.Errorf("unset env lookup = %q, want def", got)
	}
}

func TestBandsClassify(t *testing.T) {
	bands := tunables.Bands{Low: 0.2, Medium: 0.6, High: 0.85}

	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"zero", 0, "low"},
		{"below medium", 0.59, "low"},
		{"at medium", 0.6, "medium"},
		{"below high", 0.84, "medium"},
		{"at high", 0.85, "high"},
		{"full confidence", 1, "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bands.Classify(tt.score); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.score, got, tt.want)
			}
		})
	}
}

func TestLoadRetryDefaults(t *testing.T) {
	retry := tunables.LoadRetry(tunables.Static{})

	if retry.BaseDelay != 500*time.Millisecond {
		t.Errorf("BaseDelay = %v, want 500ms", retry.BaseDelay)
	}
	if retry.MaxAttempts != 4 {
		t.Errorf("MaxAttempts = %d, want 4", retry.MaxAttempts)
	}
}

func TestLoadRetryOverrides(t *testing.T) {
	retry := tunables.LoadRetry(tunables.Static{
		"retry.base_delay":   "1s",
		"retry.max_attempts": "2",
	})

	if retry.BaseDelay != time.Second {
		t.Errorf("BaseDelay = %v, want 1s", retry.BaseDelay)
	}
	if retry.MaxAttempts != 2 {
		t.Errorf("MaxAttempts = %d, want 2", retry.MaxAttempts)
	}
}
