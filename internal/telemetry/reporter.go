package telemetry

import "go.uber.org/zap"

// Reporter receives every error the shift service surfaces to its callers
type Reporter interface {
	RecordError(op string, err error)
}

// ZapReporter records errors as structured log entries
type ZapReporter struct {
	logger *zap.Logger
}

func NewZapReporter(logger *zap.Logger) *ZapReporter {
	return &ZapReporter{logger: logger.Named("telemetry")}
}

func (r *ZapReporter) RecordError(op string, err error) {
	if err == nil {
		return
	}
	r.logger.Error("Operation failed",
		zap.String("operation", op),
		zap.Error(err),
	)
}

// Nop discards every report
type Nop struct{}

func (Nop) RecordError(string, error) {}
