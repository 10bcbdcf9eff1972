package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"
)

func TestParseDirectivesOrdering(t *testing.T) {
	got, err := ParseDirectives("info, storage=debug ,storage.pool=off")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Directive{
		{Target: "storage.pool", Level: OffLevel},
		{Target: "storage", Level: zapcore.DebugLevel},
		{Target: "", Level: zapcore.InfoLevel},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("directives mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDirectivesErrors(t *testing.T) {
	for _, expr := range []string{"", " , ", "=debug", "db=loud", "info,=warn", "a..b=info", "my app"} {
		if _, err := ParseDirectives(expr); err == nil {
			t.Fatalf("expected error for %q", expr)
		}
	}
}

func TestParseDirectivesBareTarget(t *testing.T) {
	got, err := ParseDirectives("warn,myapp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Directive{
		{Target: "myapp", Level: TraceLevel},
		{Target: "", Level: zapcore.WarnLevel},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("directives mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDirectivesLastDuplicateWins(t *testing.T) {
	cases := map[string][]Directive{
		"info,warn":            {{Target: "", Level: zapcore.WarnLevel}},
		"db=info,db=warn":      {{Target: "db", Level: zapcore.WarnLevel}},
		"db=debug,info,db=off": {{Target: "db", Level: OffLevel}, {Target: "", Level: zapcore.InfoLevel}},
	}
	for expr, want := range cases {
		got, err := ParseDirectives(expr)
		if err != nil {
			t.Fatalf("ParseDirectives(%q): %v", expr, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("ParseDirectives(%q) mismatch (-want +got):\n%s", expr, diff)
		}
	}
}

func TestParseDirectivesPathSeparator(t *testing.T) {
	directives, err := ParseDirectives("storage::db=debug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := LevelFor(directives, "storage.db.pool", zapcore.ErrorLevel); got != zapcore.DebugLevel {
		t.Fatalf("expected storage::db to match logger storage.db.pool, got %s", got)
	}
}

func TestParseDirectivesLossySkipsBadEntries(t *testing.T) {
	got, bad := ParseDirectivesLossy("db=loud,=info,http=debug")
	if len(bad) != 2 {
		t.Fatalf("expected two skipped entries, got %v", bad)
	}
	if diff := cmp.Diff([]Directive{{Target: "http", Level: zapcore.DebugLevel}}, got); diff != "" {
		t.Fatalf("directives mismatch (-want +got):\n%s", diff)
	}
}

func TestLevelFor(t *testing.T) {
	directives, err := ParseDirectives("storage=debug,storage.pool=error,http=trace")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]zapcore.Level{
		"storage":         zapcore.DebugLevel,
		"storage.queries": zapcore.DebugLevel,
		"storage.pool":    zapcore.ErrorLevel,
		"storage.pool.io": zapcore.ErrorLevel,
		"storagex":        zapcore.WarnLevel,
		"http":            TraceLevel,
		"":                zapcore.WarnLevel,
	}
	for name, want := range cases {
		if got := LevelFor(directives, name, zapcore.WarnLevel); got != want {
			t.Fatalf("LevelFor(%q) = %s, want %s", name, got, want)
		}
	}
}
