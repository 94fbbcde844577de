package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/anikutusu/anikutusu")

// Usage carries token counts reported by the generative service.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// genSpan wraps an otel span for one generative operation and records
// gen_ai.* semantic attributes on end.
type genSpan struct {
	Provider  string
	ModelID   string
	Usage     *Usage
	StartTime time.Time
	// Time to first token, in seconds
	TimeToFirstToken *float64

	span trace.Span
}

// TraceGenerate traces a unary generative call.
func TraceGenerate[T any](
	ctx context.Context,
	provider string,
	modelID string,
	operation string,
	fn func(context.Context, *Recorder) (*T, error),
) (*T, error) {
	ctx, span := newGenSpan(ctx, provider, modelID, operation)
	defer span.OnEnd()

	result, err := fn(ctx, &Recorder{span: span})
	if err != nil {
		span.OnError(err)
		return nil, err
	}

	return result, nil
}

// TraceStreamStart traces the setup of a streaming generative call and
// returns a recorder the stream consumer finishes explicitly.
func TraceStreamStart(
	ctx context.Context,
	provider string,
	modelID string,
	operation string,
) (context.Context, *Recorder) {
	ctx, span := newGenSpan(ctx, provider, modelID, operation)
	return ctx, &Recorder{span: span}
}

// Recorder lets callers report usage and stream progress onto the span.
type Recorder struct {
	span *genSpan
}

// OnUsage records token usage reported by the service.
func (r *Recorder) OnUsage(usage Usage) {
	r.span.Usage = &usage
}

// OnFirstToken records time to first token for streaming calls.
func (r *Recorder) OnFirstToken() {
	if r.span.TimeToFirstToken == nil {
		ttft := time.Since(r.span.StartTime).Seconds()
		r.span.TimeToFirstToken = &ttft
	}
}

// OnError records a terminal error on the span.
func (r *Recorder) OnError(err error) {
	r.span.OnError(err)
}

// End finishes the span. Required for spans started with TraceStreamStart.
func (r *Recorder) End() {
	r.span.OnEnd()
}

func newGenSpan(
	ctx context.Context,
	provider string,
	modelID string,
	operation string,
) (context.Context, *genSpan) {
	spanCtx, otelSpan := tracer.Start(ctx, "anikutusu."+operation)

	return spanCtx, &genSpan{
		Provider:  provider,
		ModelID:   modelID,
		StartTime: time.Now(),
		span:      otelSpan,
	}
}

func (s *genSpan) OnError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *genSpan) OnEnd() {
	s.span.SetAttributes(
		attribute.String("gen_ai.operation.name", "generate_content"),
		attribute.String("gen_ai.provider.name", s.Provider),
		attribute.String("gen_ai.request.model", s.ModelID),
	)

	if s.Usage != nil {
		s.span.SetAttributes(
			attribute.Int("gen_ai.usage.input_tokens", s.Usage.InputTokens),
			attribute.Int("gen_ai.usage.output_tokens", s.Usage.OutputTokens),
		)
	}

	if s.TimeToFirstToken != nil {
		s.span.SetAttributes(attribute.Float64("gen_ai.server.time_to_first_token", *s.TimeToFirstToken))
	}

	s.span.End()
}
