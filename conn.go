// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package nethttp

import (
	"context"
	"net"
	"net/http"
	"net/url"

	"github.com/DataDog/dd-otel-nethttp/httpattrs"
)

// Conn describes the connection state of the client a request is sent
// through.
type Conn interface {
	// Started reports whether the connection is established. A request
	// issued while it is not is the client bootstrapping itself and is not
	// traced.
	Started() bool
	UseTLS() bool
	Address() string
	Port() int
	// Proxy reports whether connections go through a proxy.
	Proxy() bool
	ProxyAddress() string
	ProxyPort() int
}

// RoundTripFunc sends a request. It implements [http.RoundTripper].
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls f(req).
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// DialFunc opens the network connection of a client.
type DialFunc func(ctx context.Context) (net.Conn, error)

// requestConn derives connection state from the URL of a request sent through
// net/http, optionally through a proxy.
type requestConn struct {
	target *url.URL
	proxy  *url.URL
}

func newRequestConn(req *http.Request) requestConn {
	target := req.URL
	if target == nil || target.Host == "" {
		target = &url.URL{Scheme: "http", Host: req.Host}
	}
	return requestConn{target: target}
}

// Started is always true: net/http never sends a request to bootstrap a
// connection.
func (c requestConn) Started() bool        { return true }
func (c requestConn) UseTLS() bool         { return c.target.Scheme == "https" }
func (c requestConn) Address() string      { return c.target.Hostname() }
func (c requestConn) Port() int            { return httpattrs.Port(c.target) }
func (c requestConn) Proxy() bool          { return c.proxy != nil }
func (c requestConn) ProxyAddress() string { return c.proxy.Hostname() }
func (c requestConn) ProxyPort() int       { return httpattrs.Port(c.proxy) }
