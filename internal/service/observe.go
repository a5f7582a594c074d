package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
)

const tracerName = "github.com/Ahammedsa/server-site-fitenss/internal/service"

// observer carries the logger and tracer shared by every service.
type observer struct {
	logger *zap.Logger
	tracer trace.Tracer
}

func newObserver(logger *zap.Logger) observer {
	return observer{logger: logger, tracer: otel.Tracer(tracerName)}
}

func (o observer) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name)
}

func (o observer) audit(event string, attrs ...any) {
	logger := o.log()
	fields := make([]zap.Field, 0, len(attrs)/2+2)
	fields = append(fields, zap.String("event", event), zap.Time("timestamp", time.Now().UTC()))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	logger.Info("audit", fields...)
}

func (o observer) log() *zap.Logger {
	if o.logger != nil {
		return o.logger
	}
	return zap.L()
}

// fail records err on the span and returns it unchanged.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	return err
}

func asStorage(op string, err error) error {
	if errors.Is(err, domain.ErrStorage) || errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
