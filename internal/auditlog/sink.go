package auditlog

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Sink destination of the order log
type Sink interface {
	Name() string
	Append(ctx context.Context, rec Record) error
}

// NopSink used when no audit destination is configured
type NopSink struct{}

func (NopSink) Name() string { return "nop" }
func (NopSink) Append(_ context.Context, _ Record) error { return nil }

// MultiSink appends to every sink in turn. One failing sink does not stop the
// others; the returned error joins every *AuditLogError.
type MultiSink struct {
	sinks  []Sink
	logger *zerolog.Logger
}

// NewMultiSink fans out to sinks
func NewMultiSink(logger *zerolog.Logger, sinks ...Sink) *MultiSink {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &MultiSink{sinks: sinks, logger: logger}
}

func (m *MultiSink) Name() string { return "multi" }

// Len number of configured sinks
func (m *MultiSink) Len() int { return len(m.sinks) }

func (m *MultiSink) Append(ctx context.Context, rec Record) error {
	if rec.Order == nil || len(rec.Order.Items) == 0 {
		return ErrEmptyRecord
	}

	var errs []error
	for _, s := range m.sinks {
		if err := s.Append(ctx, rec); err != nil {
			m.logger.Warn().Err(err).
				Str("sink", s.Name()).
				Str("order_id", rec.Order.ID).
				Msg("audit append failed")

			var aErr *AuditLogError
			if !errors.As(err, &aErr) {
				err = &AuditLogError{OrderID: rec.Order.ID, Sink: s.Name(), Err: err}
			}
			errs = append(errs, err)
			continue
		}
		m.logger.Debug().Str("sink", s.Name()).Str("order_id", rec.Order.ID).Msg("audit rows appended")
	}
	return errors.Join(errs...)
}
