package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Shugur-Network/loginit/internal/config"
	"github.com/spf13/pflag"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		config.EnvDestination, config.EnvFilePath, config.EnvFileRotation, config.EnvFileMaxSize,
		config.EnvServer, config.EnvServerTransport, config.EnvLevel,
		config.EnvFilter, config.EnvFilterCompat, config.EnvFormat,
	} {
		t.Setenv(name, "")
	}
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		// flag values persist on the package-level command between runs
		rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestShowUsesFlagsOverEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvDestination, "c")
	t.Setenv(config.EnvLevel, "error")

	path := filepath.Join(t.TempDir(), "svc.log")
	out, err := runRoot(t, "show", "--app", "svc", "--file", "--file-path", path, "--rotation", "d:4", "--level", "debug")
	if err != nil {
		t.Fatalf("show returned error: %v", err)
	}

	want := "log to console, log to file " + path + ", rotation: daily:4, default level: debug"
	if !strings.Contains(out, want) {
		t.Fatalf("got %q, want it to contain %q", out, want)
	}
}

func TestShowReportsDroppedServer(t *testing.T) {
	clearEnv(t)

	out, err := runRoot(t, "show", "--server")
	if err != nil {
		t.Fatalf("show returned error: %v", err)
	}
	if !strings.Contains(out, "log to console") || !strings.Contains(out, "warning:") {
		t.Fatalf("expected console fallback and a warning, got %q", out)
	}
}

func TestShowRejectsBadLevel(t *testing.T) {
	clearEnv(t)
	if _, err := runRoot(t, "show", "--level", "loud"); err == nil {
		t.Fatalf("expected an error for --level loud")
	}
}

func TestVersion(t *testing.T) {
	out, err := runRoot(t, "version")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if strings.TrimSpace(out) != "loginit version: dev" {
		t.Fatalf("unexpected output %q", out)
	}
}

// The only test in this package that installs the process-wide logger.
func TestEmitUsesComponentLoggerAtEveryLevel(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "emit.log")
	if _, err := runRoot(t, "emit", "--file", "--file-path", path, "--format", "json",
		"--level", "trace", "--component", "billing"); err != nil {
		t.Fatalf("emit returned error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open emitted file: %v", err)
	}
	defer f.Close()

	levels := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("line is not JSON: %q", sc.Text())
		}
		if rec["msg"] != "sample" {
			continue
		}
		if rec["logger"] != "billing" {
			t.Fatalf("sample record logged under %v, want billing: %v", rec["logger"], rec)
		}
		levels[rec["level"].(string)] = true
	}
	for _, want := range []string{"trace", "debug", "info", "warn", "error"} {
		if !levels[want] {
			t.Fatalf("no %s sample record in %v", want, levels)
		}
	}
}
