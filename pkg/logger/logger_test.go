package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("expected JSON line, got %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestInit_ProductionJSONWithServiceAndComponent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Level: "debug", Env: "production", Output: &buf, Service: "inventory"})

	log := Component("auth")
	log.Info().Str("user_id", "u1").Msg("login")

	entry := decodeLines(t, &buf)[0]
	if entry["service"] != "inventory" || entry["env"] != "production" {
		t.Errorf("expected service and env fields, got %v", entry)
	}
	if entry["component"] != "auth" {
		t.Errorf("expected component field, got %v", entry["component"])
	}
	if entry["message"] != "login" {
		t.Errorf("unexpected message %v", entry["message"])
	}
}

func TestInit_DevelopmentUsesConsole(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Env: "development", Output: &buf})
	log := Get()
	log.Info().Msg("ready")

	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("expected console output in development, got JSON %q", buf.String())
	}
	if !strings.Contains(buf.String(), "ready") {
		t.Fatalf("expected message in output, got %q", buf.String())
	}
}

func TestInit_UnknownLevelIsReported(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	log := Init(Options{Level: "verbose", Env: "production", Output: &buf})

	if log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info fallback, got %s", log.GetLevel())
	}
	entry := decodeLines(t, &buf)[0]
	if entry["level"] != "warn" || !strings.Contains(entry["error"].(string), "verbose") {
		t.Fatalf("expected a warning naming the bad level, got %v", entry)
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Env: "production", Output: &first})
	Init(Options{Env: "production", Output: &second})

	log := Get()
	log.Info().Msg("hello")
	if first.Len() == 0 || second.Len() != 0 {
		t.Fatalf("expected output only on the first writer")
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Get()
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"info":    zerolog.InfoLevel,
	}
	for in, want := range cases {
		got, err := parseLevel(in)
		if err != nil || got != want {
			t.Errorf("parseLevel(%q) = %s, %v; want %s", in, got, err, want)
		}
	}

	if lvl, err := parseLevel("bogus"); err == nil || lvl != zerolog.InfoLevel {
		t.Errorf("expected info with an error for an unknown level, got %s, %v", lvl, err)
	}
}
