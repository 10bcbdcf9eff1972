package config

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Directive is one entry of a filter expression. An empty Target is the default directive.
type Directive struct {
	Target string
	Level  zapcore.Level
}

// ParseDirectives parses a comma-separated filter expression of the form
// "info,storage=debug,storage.pool=off". Targets are logger name prefixes; a bare
// word that is not a level enables everything for that target, and "::" is read as ".".
// A later directive for the same target replaces an earlier one.
// The result is ordered longest target first so the first match is the most specific.
func ParseDirectives(expr string) ([]Directive, error) {
	out, bad := parseDirectives(expr)
	if len(bad) > 0 {
		return nil, bad[0]
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no directives in %q", expr)
	}
	return out, nil
}

// ParseDirectivesLossy is ParseDirectives for environment input: entries that do
// not parse are skipped and returned as errors instead of failing the expression.
func ParseDirectivesLossy(expr string) ([]Directive, []error) {
	return parseDirectives(expr)
}

func parseDirectives(expr string) ([]Directive, []error) {
	var (
		out []Directive
		bad []error
	)
	index := make(map[string]int)

	for _, raw := range strings.Split(expr, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		d, err := parseDirective(raw)
		if err != nil {
			bad = append(bad, err)
			continue
		}
		if i, ok := index[d.Target]; ok {
			out[i].Level = d.Level
			continue
		}
		index[d.Target] = len(out)
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool { return len(out[i].Target) > len(out[j].Target) })
	return out, bad
}

func parseDirective(raw string) (Directive, error) {
	i := strings.IndexByte(raw, '=')
	if i < 0 {
		if lvl, err := parseDirectiveLevel(raw); err == nil {
			return Directive{Level: lvl}, nil
		}
		target, err := normalizeTarget(raw)
		if err != nil {
			return Directive{}, fmt.Errorf("directive %q: %w", raw, err)
		}
		return Directive{Target: target, Level: TraceLevel}, nil
	}

	target, err := normalizeTarget(raw[:i])
	if err != nil {
		return Directive{}, fmt.Errorf("directive %q: %w", raw, err)
	}
	lvl, err := parseDirectiveLevel(strings.TrimSpace(raw[i+1:]))
	if err != nil {
		return Directive{}, fmt.Errorf("directive %q: %w", raw, err)
	}
	return Directive{Target: target, Level: lvl}, nil
}

// normalizeTarget maps "storage::db" to the zap logger name "storage.db".
func normalizeTarget(s string) (string, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "::", ".")
	switch {
	case s == "":
		return "", fmt.Errorf("empty target")
	case strings.ContainsAny(s, " \t[]{}\""):
		return "", fmt.Errorf("target %q is not a logger name", s)
	case strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") || strings.Contains(s, ".."):
		return "", fmt.Errorf("target %q is not a logger name", s)
	}
	return s, nil
}

// LevelFor returns the level the directives assign to loggerName, falling back to def
// when no directive matches.
func LevelFor(directives []Directive, loggerName string, def zapcore.Level) zapcore.Level {
	for _, d := range directives {
		if d.Target == "" {
			return d.Level
		}
		if loggerName == d.Target || strings.HasPrefix(loggerName, d.Target+".") {
			return d.Level
		}
	}
	return def
}

func parseDirectiveLevel(s string) (zapcore.Level, error) {
	if strings.EqualFold(s, "off") {
		return OffLevel, nil
	}
	return ParseLevel(s)
}
