// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package nethttp instruments outbound HTTP requests with OpenTelemetry
// spans.
//
// An [Instrumentation] wraps the two extension points of an HTTP client:
// sending a request ([Instrumentation.Request]) and opening the underlying
// connection ([Instrumentation.Connect]). Adapters are provided for
// [http.RoundTripper], [http.Transport] and the per-host [Session] client:
//
//	client := nethttp.WrapClient(&http.Client{}, nethttp.WithPeerService("billing"))
//	resp, err := client.Get("https://billing.internal/invoices")
package nethttp

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/DataDog/dd-otel-nethttp/internal/config"
	"github.com/DataDog/dd-otel-nethttp/internal/version"
)

// ScopeName is the instrumentation scope of the tracer spans are started with.
const ScopeName = "github.com/DataDog/dd-otel-nethttp"

// A StatusMapper maps an HTTP status code to a span status and description.
type StatusMapper func(statusCode int) (codes.Code, string)

// Instrumentation traces outbound requests and connection attempts. It is
// safe for concurrent use and meant to be shared by every client of a
// process.
type Instrumentation struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	mapper     StatusMapper
	cfg        *config.Config
	names      spanNames
}

// New returns an Instrumentation configured from the environment and opts.
// Options take precedence over the environment.
func New(opts ...Option) *Instrumentation {
	cfg := config.Load()
	for _, fn := range opts {
		fn(cfg)
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	prop := cfg.Propagators
	if prop == nil {
		prop = otel.GetTextMapPropagator()
	}
	mapper := StatusMapper(cfg.StatusMapper)
	if mapper == nil {
		mapper = statusMapper(cfg.IsStatusError)
	}
	return &Instrumentation{
		tracer:     tp.Tracer(ScopeName, trace.WithInstrumentationVersion(version.Tag)),
		propagator: prop,
		mapper:     mapper,
		cfg:        cfg,
	}
}

// DefaultStatusMapper leaves the status unset for codes in [100, 400) and
// reports an error with the status text otherwise.
func DefaultStatusMapper(statusCode int) (codes.Code, string) {
	return statusMapper(config.IsErrorStatus)(statusCode)
}

func statusMapper(isError func(int) bool) StatusMapper {
	if isError == nil {
		isError = config.IsErrorStatus
	}
	return func(statusCode int) (codes.Code, string) {
		if !isError(statusCode) {
			return codes.Unset, ""
		}
		return codes.Error, http.StatusText(statusCode)
	}
}
