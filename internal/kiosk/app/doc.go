// Package app holds the kiosk use cases: catalog management, order creation,
// and the daily sales statistics mail.
//
// Every write runs inside ports.Store.WithinTx so that a service call either
// commits all of its changes or none of them.
package app

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("github.com/jcmexdev/cafekiosk/internal/kiosk/app")
