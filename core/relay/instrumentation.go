package relay

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/morse-client/core/relay"

var (
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	droppedClientsCounter, _ = meter.Int64Counter("relay.clients.dropped",
		metric.WithDescription("Browser clients disconnected for falling behind"))
)
