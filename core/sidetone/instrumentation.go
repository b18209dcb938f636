package sidetone

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/morse-client/core/sidetone"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	burstsRenderedCounter, _ = meter.Int64Counter("sidetone.bursts.rendered",
		metric.WithDescription("Tone bursts written to the audio sink"))
	droppedRequestsCounter, _ = meter.Int64Counter("sidetone.requests.dropped",
		metric.WithDescription("Play requests discarded before rendering"))
)
