package link

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/morse-client/core/link"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	linesReadCounter, _ = meter.Int64Counter("link.lines.read",
		metric.WithDescription("Non-empty lines read from the device"))
	malformedLinesCounter, _ = meter.Int64Counter("link.lines.malformed",
		metric.WithDescription("Lines under a known prefix that failed to decode"))
)
