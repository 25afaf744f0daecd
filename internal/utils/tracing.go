package utils

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "personia-hub"

func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch val := value.(type) {
	case string:
		return attribute.String(key, val)
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case bool:
		return attribute.Bool(key, val)
	case float64:
		return attribute.Float64(key, val)
	case time.Duration:
		return attribute.String(key, val.String())
	case fmt.Stringer:
		return attribute.String(key, val.String())
	default:
		return attribute.String(key, "unknown_type")
	}
}

// TraceStep starts a span for one step of an operation
func TraceStep(ctx context.Context, stepName string, attributes map[string]interface{}) (context.Context, trace.Span) {
	otelAttrs := make([]attribute.KeyValue, 0, len(attributes)+1)
	otelAttrs = append(otelAttrs, attribute.String("step.name", stepName))
	for k, v := range attributes {
		otelAttrs = append(otelAttrs, toAttribute(k, v))
	}

	return otel.Tracer(tracerName).Start(ctx, "step."+stepName, trace.WithAttributes(otelAttrs...))
}

// TraceInputParsing traces request body or parameter parsing
func TraceInputParsing(ctx context.Context, inputType string) (context.Context, trace.Span) {
	return TraceStep(ctx, "parse_input", map[string]interface{}{
		"input.type": inputType,
	})
}

// TraceInputValidation traces input validation operations
func TraceInputValidation(ctx context.Context, validationType, field string) (context.Context, trace.Span) {
	return TraceStep(ctx, "validate_input", map[string]interface{}{
		"validation.type":  validationType,
		"validation.field": field,
	})
}

// TraceDatabaseFind traces database reads
func TraceDatabaseFind(ctx context.Context, collection, filter string) (context.Context, trace.Span) {
	return TraceStep(ctx, "database_find", map[string]interface{}{
		"db.collection": collection,
		"db.filter":     filter,
		"db.operation":  "find",
	})
}

// TraceDatabaseWrite traces inserts, updates and deletes
func TraceDatabaseWrite(ctx context.Context, collection, operation string) (context.Context, trace.Span) {
	return TraceStep(ctx, "database_"+operation, map[string]interface{}{
		"db.collection": collection,
		"db.operation":  operation,
	})
}

// TraceCacheGet traces cache get operations
func TraceCacheGet(ctx context.Context, cacheKey string) (context.Context, trace.Span) {
	return TraceStep(ctx, "cache_get", map[string]interface{}{
		"cache.key":       cacheKey,
		"cache.operation": "get",
	})
}

// TraceCacheSet traces cache set operations
func TraceCacheSet(ctx context.Context, cacheKey string, ttl time.Duration) (context.Context, trace.Span) {
	return TraceStep(ctx, "cache_set", map[string]interface{}{
		"cache.key":       cacheKey,
		"cache.operation": "set",
		"cache.ttl":       ttl,
	})
}

// TraceCacheInvalidation traces cache deletes
func TraceCacheInvalidation(ctx context.Context, cacheKey string) (context.Context, trace.Span) {
	return TraceStep(ctx, "cache_invalidation", map[string]interface{}{
		"cache.key":       cacheKey,
		"cache.operation": "delete",
	})
}

// TraceBusinessLogic traces business logic operations
func TraceBusinessLogic(ctx context.Context, logicType string) (context.Context, trace.Span) {
	return TraceStep(ctx, "business_logic", map[string]interface{}{
		"logic.type": logicType,
	})
}

// TraceExternalService traces calls to external services
func TraceExternalService(ctx context.Context, serviceName, operation string) (context.Context, trace.Span) {
	return TraceStep(ctx, "external_service", map[string]interface{}{
		"service.name":      serviceName,
		"service.operation": operation,
	})
}

// TraceResponseSerialization traces response serialization
func TraceResponseSerialization(ctx context.Context, responseType string) (context.Context, trace.Span) {
	return TraceStep(ctx, "serialize_response", map[string]interface{}{
		"response.type": responseType,
	})
}

// RecordErrorInSpan records err on span, marks it failed and attaches extra context
func RecordErrorInSpan(span trace.Span, err error, context map[string]interface{}) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	for k, v := range context {
		span.SetAttributes(toAttribute(k, v))
	}
}

// AddSpanAttribute adds a single attribute to a span
func AddSpanAttribute(span trace.Span, key string, value interface{}) {
	span.SetAttributes(toAttribute(key, value))
}
