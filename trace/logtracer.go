package trace

import (
	"github.com/sirupsen/logrus"

	"github.com/meenmo/bondcalc/bond"
)

// LogTracer writes each step as a structured logrus entry.
type LogTracer struct {
	log   logrus.FieldLogger
	level logrus.Level
}

// NewLogTracer logs steps through log at debug level.
func NewLogTracer(log logrus.FieldLogger) *LogTracer {
	return &LogTracer{log: log, level: logrus.DebugLevel}
}

// WithLevel returns a copy that logs at level.
func (l *LogTracer) WithLevel(level logrus.Level) *LogTracer {
	cp := *l
	cp.level = level
	return &cp
}

var _ bond.Tracer = (*LogTracer)(nil)

// Record logs s. Inputs become fields prefixed with "in.".
func (l *LogTracer) Record(s bond.Step) {
	fields := logrus.Fields{
		"step": s.Name,
	}
	if s.Formula != "" {
		fields["formula"] = s.Formula
	}
	if s.Calculation != "" {
		fields["calculation"] = s.Calculation
	}
	if len(s.Dependencies) > 0 {
		fields["deps"] = s.Dependencies
	}
	for k, v := range s.Inputs {
		fields["in."+k] = v
	}

	entry := l.log.WithFields(fields)
	switch l.level {
	case logrus.TraceLevel:
		entry.Trace(s.Description)
	case logrus.InfoLevel:
		entry.Info(s.Description)
	case logrus.WarnLevel:
		entry.Warn(s.Description)
	default:
		entry.Debug(s.Description)
	}
}
