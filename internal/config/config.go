// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package config holds the configuration of the HTTP client instrumentation.
// A Config is resolved once, from defaults, the configuration file, the
// environment and finally code options, and is read-only afterwards.
package config

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/DataDog/dd-otel-nethttp/httpattrs"
	"github.com/DataDog/dd-otel-nethttp/internal/log"
)

// The env vars described below are used to configure the client instrumentation.
const (
	// EnvClientErrorStatuses is the name of the env var used to specify error status codes on http client spans.
	EnvClientErrorStatuses = "DD_TRACE_HTTP_CLIENT_ERROR_STATUSES"
	// EnvClientQueryStringEnabled is the name of the env var used to specify whether query string collection is enabled for http client spans.
	EnvClientQueryStringEnabled = "DD_TRACE_HTTP_CLIENT_TAG_QUERY_STRING"
	// EnvQueryStringRegexp is the name of the env var used to specify the regexp to use for query string obfuscation.
	EnvQueryStringRegexp = "DD_TRACE_OBFUSCATION_QUERY_STRING_REGEXP"
	// EnvHeaderTags is the name of the env var listing the request headers captured as span attributes.
	EnvHeaderTags = "DD_TRACE_HEADER_TAGS"
	// EnvPeerService is the name of the env var setting the default peer.service attribute.
	EnvPeerService = "DD_TRACE_PEER_SERVICE"
	// EnvPropagation is the name of the env var used to disable trace context injection.
	EnvPropagation = "DD_TRACE_HTTP_CLIENT_PROPAGATION"
	// EnvConfigFile is the name of the env var pointing to a YAML configuration file.
	EnvConfigFile = "DD_TRACE_HTTP_CLIENT_CONFIG_FILE"
)

// defaultQueryStringRegexp is the regexp used for query string obfuscation if [EnvQueryStringRegexp] is unset.
var defaultQueryStringRegexp = regexp.MustCompile("(?i)(?:p(?:ass)?w(?:or)?d|pass(?:_?phrase)?|secret|(?:api_?|private_?|public_?|access_?|secret_?)key(?:_?id)?|token|consumer_?(?:id|key|secret)|sign(?:ed|ature)?|auth(?:entication|orization)?)(?:(?:\\s|%20)*(?:=|%3D)[^&]+|(?:\"|%22)(?:\\s|%20)*(?::|%3A)(?:\\s|%20)*(?:\"|%22)(?:%2[^2]|%[^2]|[^\"%])+(?:\"|%22))|bearer(?:\\s|%20)+[a-z0-9\\._\\-]|token(?::|%3A)[a-z0-9]{13}|gh[opsu]_[0-9a-zA-Z]{36}|ey[I-L](?:[\\w=-]|%3D)+\\.ey[I-L](?:[\\w=-]|%3D)+(?:\\.(?:[\\w.+\\/=-]|%3D|%2F|%2B)+)?|[\\-]{5}BEGIN(?:[a-z\\s]|%20)+PRIVATE(?:\\s|%20)KEY[\\-]{5}[^\\-]+[\\-]{5}END(?:[a-z\\s]|%20)+PRIVATE(?:\\s|%20)KEY|ssh-rsa(?:\\s|%20)*(?:[a-z0-9\\/\\.+]|%2F|%5C|%2B){100,}")

// A RoundTripperBeforeFunc can be used to modify a span before an http
// RoundTrip is made.
type RoundTripperBeforeFunc func(*http.Request, trace.Span)

// A RoundTripperAfterFunc can be used to modify a span after an http
// RoundTrip is made. It is possible for the http Response to be nil.
type RoundTripperAfterFunc func(*http.Response, trace.Span)

// Config holds the instrumentation settings.
type Config struct {
	httpattrs.Options

	// TracerProvider creates the tracer spans are started with. Nil means
	// the global provider.
	TracerProvider trace.TracerProvider
	// Propagators injects the trace context into outgoing headers. Nil means
	// the global propagator.
	Propagators propagation.TextMapPropagator
	// Propagation enables trace context injection.
	Propagation bool
	// IgnoreRequest reports whether a request is sent without tracing.
	IgnoreRequest func(*http.Request) bool
	// IsStatusError reports whether a response status code marks the span
	// as failed.
	IsStatusError func(statusCode int) bool
	// StatusMapper, when set, replaces the status derivation built from
	// IsStatusError.
	StatusMapper func(statusCode int) (codes.Code, string)
	// ErrCheck reports whether a transport error marks the span as failed.
	// Nil means every error does.
	ErrCheck func(err error) bool
	// SpanOpts are appended to the options of every client span.
	SpanOpts []trace.SpanStartOption
	Before   RoundTripperBeforeFunc
	After    RoundTripperAfterFunc
}

// Option describes an option for the instrumentation.
type Option func(*Config)

// Load returns a Config initialized from defaults, the configuration file
// named by [EnvConfigFile] and the environment, in increasing order of
// precedence.
func Load() *Config {
	src := newSource()
	cfg := &Config{
		Options: httpattrs.Options{
			PeerService:       src.string(EnvPeerService),
			HeaderTags:        src.list(EnvHeaderTags),
			QueryString:       src.bool(EnvClientQueryStringEnabled, true),
			QueryStringRegexp: queryStringRegexp(src),
		},
		Propagation:   src.bool(EnvPropagation, true),
		IgnoreRequest: func(_ *http.Request) bool { return false },
		IsStatusError: IsErrorStatus,
	}
	if fn := GetErrorCodesFromInput(src.string(EnvClientErrorStatuses)); fn != nil {
		cfg.IsStatusError = fn
	}
	return cfg
}

func queryStringRegexp(src *source) *regexp.Regexp {
	if s, ok := src.lookup(EnvQueryStringRegexp); !ok {
		return defaultQueryStringRegexp
	} else if s == "" {
		log.Debug("%s is set but empty. Query string obfuscation will be disabled.", EnvQueryStringRegexp)
		return nil
	} else if r, err := regexp.Compile(s); err == nil {
		return r
	}
	log.Error("Could not compile regexp from %s. Using default regexp instead.", EnvQueryStringRegexp)
	return defaultQueryStringRegexp
}

func (s *source) string(name string) string {
	v, _ := s.lookup(name)
	return strings.TrimSpace(v)
}

func (s *source) bool(name string, def bool) bool {
	v, ok := s.lookup(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		log.Warn("Invalid boolean value %q for %s, using default %t", v, name, def)
		return def
	}
	return b
}

func (s *source) list(name string) []string {
	v := s.string(name)
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
