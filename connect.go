// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package nethttp

import (
	"context"
	"net"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DataDog/dd-otel-nethttp/ext"
	"github.com/DataDog/dd-otel-nethttp/httpattrs"
)

// Connect opens the connection of conn through next inside an "HTTP CONNECT"
// span. The span reports the host actually dialed: the proxy when conn uses
// one, the target otherwise. Errors from next are returned unchanged.
func (i *Instrumentation) Connect(ctx context.Context, conn Conn, next DialFunc) (net.Conn, error) {
	host, port := conn.Address(), conn.Port()
	if conn.Proxy() {
		host, port = conn.ProxyAddress(), conn.ProxyPort()
	}
	attrs := httpattrs.Merge(i.baseline(ctx), []attribute.KeyValue{
		ext.PeerHostname.String(host),
		ext.PeerPort.Int(port),
	})
	ctx, span := i.tracer.Start(ctx, connectSpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	c, err := next(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return c, err
}
