package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Meter is the service-wide otel meter. Without a configured provider it is a no-op.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
