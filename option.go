// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package nethttp

import (
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/DataDog/dd-otel-nethttp/internal/config"
)

// Option describes options for the instrumentation.
type Option = config.Option

// A RoundTripperBeforeFunc can be used to modify a span before a request is
// sent.
type RoundTripperBeforeFunc = config.RoundTripperBeforeFunc

// A RoundTripperAfterFunc can be used to modify a span after a request is
// sent. It is possible for the http Response to be nil.
type RoundTripperAfterFunc = config.RoundTripperAfterFunc

// WithTracerProvider sets the provider of the tracer used to start spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config.Config) {
		cfg.TracerProvider = tp
	}
}

// WithPropagators sets the propagator used to inject the trace context into
// outgoing requests. Defaults to the global propagator.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(cfg *config.Config) {
		cfg.Propagators = p
	}
}

// WithPropagation enables (default) or disables injection of the trace
// context into outgoing request headers.
func WithPropagation(on bool) Option {
	return func(cfg *config.Config) {
		cfg.Propagation = on
	}
}

// WithPeerService sets the peer.service attribute of every span.
func WithPeerService(name string) Option {
	return func(cfg *config.Config) {
		cfg.PeerService = name
	}
}

// WithHeaderTags enables the integration to attach HTTP request headers as span attributes.
// Warning:
// Using this feature can risk exposing sensitive data such as authorization tokens.
func WithHeaderTags(headers []string) Option {
	return func(cfg *config.Config) {
		cfg.HeaderTags = headers
	}
}

// WithURLQuantizer sets a function mapping a request URL to a low-cardinality
// route, reported as http.route.
func WithURLQuantizer(fn func(u *url.URL) string) Option {
	return func(cfg *config.Config) {
		cfg.URLQuantizer = fn
	}
}

// WithQueryString enables (default) or disables the query string in the
// http.url and http.target attributes.
func WithQueryString(on bool) Option {
	return func(cfg *config.Config) {
		cfg.QueryString = on
	}
}

// WithStatusCheck sets a span to be an error if the passed function
// returns true for a given status code.
func WithStatusCheck(fn func(statusCode int) bool) Option {
	return func(cfg *config.Config) {
		cfg.IsStatusError = fn
		cfg.StatusMapper = nil
	}
}

// WithStatusMapper replaces the mapping from status codes to span statuses.
func WithStatusMapper(m StatusMapper) Option {
	return func(cfg *config.Config) {
		cfg.StatusMapper = m
	}
}

// WithErrorCheck specifies a function fn which determines whether the passed
// error should be marked as an error. The fn is called whenever sending a
// request fails.
func WithErrorCheck(fn func(err error) bool) Option {
	return func(cfg *config.Config) {
		cfg.ErrCheck = fn
	}
}

// WithSpanOptions defines a set of additional trace.SpanStartOption to be added
// to client spans started by the integration.
func WithSpanOptions(opts ...trace.SpanStartOption) Option {
	return func(cfg *config.Config) {
		cfg.SpanOpts = append(cfg.SpanOpts, opts...)
	}
}

// WithIgnoreRequest holds the function to use for determining if the
// outgoing HTTP request should not be traced.
func WithIgnoreRequest(f func(*http.Request) bool) Option {
	return func(cfg *config.Config) {
		cfg.IgnoreRequest = f
	}
}

// WithBefore adds a RoundTripperBeforeFunc to the config.
func WithBefore(f RoundTripperBeforeFunc) Option {
	return func(cfg *config.Config) {
		cfg.Before = f
	}
}

// WithAfter adds a RoundTripperAfterFunc to the config.
func WithAfter(f RoundTripperAfterFunc) Option {
	return func(cfg *config.Config) {
		cfg.After = f
	}
}
