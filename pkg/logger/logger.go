// Package logger emits one JSON object per log line over the standard log
// writer. When the context carries an OpenTelemetry span, the trace id is
// attached so storefront logs correlate with traces.
package logger

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type Logger struct {
	service string
}

func New(service string) *Logger {
	return &Logger{service: service}
}

func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.emit(ctx, "info", msg, nil, kv)
}

func (l *Logger) Error(ctx context.Context, msg string, err error, kv ...any) {
	l.emit(ctx, "error", msg, err, kv)
}

func (l *Logger) emit(ctx context.Context, level, msg string, err error, kv []any) {
	payload := map[string]any{
		"service":   l.service,
		"level":     level,
		"message":   msg,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		payload["trace_id"] = sc.TraceID().String()
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		payload[key] = kv[i+1]
	}

	data, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		log.Printf("logger marshal failed: %v (message %q)", marshalErr, msg)
		return
	}
	log.Print(string(data))
}
