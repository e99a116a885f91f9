package decorator

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/architeacher/storefront/pkg/decorator"

type (
	commandTracingDecorator[C Command, R any] struct {
		base           CommandHandler[C, R]
		tracerProvider otelTrace.TracerProvider
	}

	queryTracingDecorator[Q Query, R Result] struct {
		base           QueryHandler[Q, R]
		tracerProvider otelTrace.TracerProvider
	}
)

func (d commandTracingDecorator[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	action := generateActionName(cmd)

	ctx, span := tracer(d.tracerProvider).Start(ctx, "command."+action,
		otelTrace.WithAttributes(attribute.String("cqrs.command", action)),
	)
	defer span.End()

	result, err := d.base.Handle(ctx, cmd)
	endSpan(span, err)

	return result, err
}

func (d queryTracingDecorator[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	action := generateActionName(query)

	ctx, span := tracer(d.tracerProvider).Start(ctx, "query."+action,
		otelTrace.WithAttributes(attribute.String("cqrs.query", action)),
	)
	defer span.End()

	result, err := d.base.Execute(ctx, query)
	endSpan(span, err)

	return result, err
}

func tracer(provider otelTrace.TracerProvider) otelTrace.Tracer {
	if provider == nil {
		provider = noop.NewTracerProvider()
	}

	return provider.Tracer(tracerName)
}

func endSpan(span otelTrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return
	}

	span.SetStatus(codes.Ok, "")
}
