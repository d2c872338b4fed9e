// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package ext contains the attribute keys set on outbound HTTP client spans.
package ext

import (
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const (
	// HTTPMethod is the HTTP request method, e.g. "GET".
	HTTPMethod = semconv.HTTPMethodKey
	// HTTPURL is the full request URL, without userinfo.
	HTTPURL = semconv.HTTPURLKey
	// HTTPScheme is the URL scheme, "http" or "https".
	HTTPScheme = semconv.HTTPSchemeKey
	// HTTPTarget is the request target: path and query.
	HTTPTarget = semconv.HTTPTargetKey
	// HTTPRoute is the quantized, low-cardinality form of the URL path.
	HTTPRoute = semconv.HTTPRouteKey
	// HTTPStatusCode is the numeric response status code.
	HTTPStatusCode = semconv.HTTPStatusCodeKey
	// HTTPRequestHeaderPrefix prefixes captured request header attributes.
	HTTPRequestHeaderPrefix = "http.request.header."
)

const (
	// NetPeerName is the host name of the request target.
	NetPeerName = semconv.NetPeerNameKey
	// NetPeerPort is the port of the request target.
	NetPeerPort = semconv.NetPeerPortKey
	// PeerService is the logical name of the remote service.
	PeerService = semconv.PeerServiceKey
)

const (
	// PeerHostname is the host a connection is opened to. When a proxy is
	// used, this is the proxy host.
	PeerHostname = attribute.Key("peer.hostname")
	// PeerPort is the port a connection is opened to.
	PeerPort = attribute.Key("peer.port")
)
