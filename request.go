// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package nethttp

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/DataDog/dd-otel-nethttp/clientcontext"
	"github.com/DataDog/dd-otel-nethttp/ext"
	"github.com/DataDog/dd-otel-nethttp/httpattrs"
	"github.com/DataDog/dd-otel-nethttp/internal/log"
)

// Request sends req through next inside a client span and returns exactly
// what next returns.
//
// No span is started when conn is not started yet, when the request is
// ignored, or when no absolute URI can be derived for it; next is then called
// with the original request. Otherwise next receives a copy of req carrying
// the span context, with the trace context injected into its headers.
func (i *Instrumentation) Request(conn Conn, req *http.Request, next RoundTripFunc) (res *http.Response, err error) {
	if !conn.Started() || i.cfg.IgnoreRequest(req) {
		return next(req)
	}
	uri, err := uriFromRequest(conn, req)
	if err != nil {
		log.Debug("Sending request untraced, cannot derive its URI: %v", err)
		return next(req)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	ctx := req.Context()
	attrs := httpattrs.Merge(
		i.baseline(ctx),
		httpattrs.FromRequest(method, uri, i.cfg.Options),
		httpattrs.HeaderTags(req.Header, i.cfg.HeaderTags),
	)
	opts := make([]trace.SpanStartOption, 0, 2+len(i.cfg.SpanOpts))
	opts = append(opts, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
	opts = append(opts, i.cfg.SpanOpts...)

	ctx, span := i.tracer.Start(ctx, i.names.get(method), opts...)
	defer func() {
		if i.cfg.After != nil {
			i.cfg.After(res, span)
		}
		span.End()
	}()
	if i.cfg.Before != nil {
		i.cfg.Before(req, span)
	}

	// Clone the request so the caller never sees the injected headers.
	r2 := req.Clone(ctx)
	if r2.Header == nil {
		r2.Header = make(http.Header)
	}
	if i.cfg.Propagation {
		i.propagator.Inject(ctx, propagation.HeaderCarrier(r2.Header))
	}

	res, err = next(r2)
	if err != nil {
		if i.cfg.ErrCheck == nil || i.cfg.ErrCheck(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return res, err
	}
	annotateSpanWithResponse(span, res, i.mapper)
	return res, nil
}

// baseline returns the ambient attributes of every span started with ctx.
func (i *Instrumentation) baseline(ctx context.Context) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if i.cfg.PeerService != "" {
		attrs = append(attrs, ext.PeerService.String(i.cfg.PeerService))
	}
	return httpattrs.Merge(attrs, clientcontext.Attributes(ctx))
}
