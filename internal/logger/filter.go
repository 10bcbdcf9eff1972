package logger

import (
	"github.com/Shugur-Network/loginit/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// filterCore decides per logger name whether an entry reaches the wrapped core.
// Targeted directives take precedence; everything else is compared with the
// default level, which can be changed at runtime.
type filterCore struct {
	zapcore.Core
	level      zap.AtomicLevel
	directives []config.Directive
}

// newFilterCore splits a bare directive out of the list and makes it the default level.
func newFilterCore(inner zapcore.Core, def zapcore.Level, directives []config.Directive) *filterCore {
	targeted := make([]config.Directive, 0, len(directives))
	for _, d := range directives {
		if d.Target == "" {
			def = d.Level
			continue
		}
		targeted = append(targeted, d)
	}
	return &filterCore{
		Core:       inner,
		level:      zap.NewAtomicLevelAt(def),
		directives: targeted,
	}
}

// Enabled reports whether any logger could emit lvl.
func (c *filterCore) Enabled(lvl zapcore.Level) bool {
	lowest := c.level.Level()
	for _, d := range c.directives {
		if d.Level < lowest {
			lowest = d.Level
		}
	}
	return lvl >= lowest
}

func (c *filterCore) With(fields []zapcore.Field) zapcore.Core {
	return &filterCore{
		Core:       c.Core.With(fields),
		level:      c.level,
		directives: c.directives,
	}
}

func (c *filterCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if ent.Level < config.LevelFor(c.directives, ent.LoggerName, c.level.Level()) {
		return ce
	}
	return c.Core.Check(ent, ce)
}

func (c *filterCore) LevelOf(loggerName string) zapcore.Level {
	return config.LevelFor(c.directives, loggerName, c.level.Level())
}
