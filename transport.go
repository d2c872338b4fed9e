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
	"strconv"
	"time"

	"github.com/DataDog/dd-otel-nethttp/internal/log"
)

type connContextKey struct{}

// transport traces both requests and dials of an *http.Transport.
type transport struct {
	base  *http.Transport
	proxy func(*http.Request) (*url.URL, error)
	inst  *Instrumentation
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	conn := newRequestConn(req)
	if t.proxy != nil {
		u, err := t.proxy(req)
		if err != nil {
			log.Debug("Proxy lookup failed for %s: %v", conn.target.Host, err)
		} else if u != nil {
			conn.proxy = u
		}
	}
	// The dial hook reads the connection state back from the request context.
	req = req.WithContext(context.WithValue(req.Context(), connContextKey{}, conn))
	return t.inst.Request(conn, req, t.base.RoundTrip)
}

// Unwrap returns the instrumented *http.Transport.
func (t *transport) Unwrap() http.RoundTripper {
	return t.base
}

func (t *transport) CloseIdleConnections() {
	t.base.CloseIdleConnections()
}

// Transport returns a RoundTripper tracing requests sent through a clone of
// base as well as the connections it opens. A nil base means a clone of
// http.DefaultTransport.
func (i *Instrumentation) Transport(base *http.Transport) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport.(*http.Transport)
	}
	t := base.Clone()
	dial := t.DialContext
	if dial == nil && t.Dial != nil {
		dial = func(_ context.Context, network, addr string) (net.Conn, error) {
			return t.Dial(network, addr)
		}
	}
	if dial == nil {
		dial = (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext
	}
	t.DialContext = i.dialHook(dial)

	// net/http prefers DialTLSContext over DialTLS for HTTPS connections.
	dialTLS := t.DialTLSContext
	if dialTLS == nil && t.DialTLS != nil {
		dialTLS = func(_ context.Context, network, addr string) (net.Conn, error) {
			return t.DialTLS(network, addr)
		}
	}
	if dialTLS != nil {
		t.DialTLSContext = i.dialHook(dialTLS)
	}
	return &transport{base: t, proxy: t.Proxy, inst: i}
}

// dialHook traces dial through Connect, using the state of the request being
// sent when there is one.
func (i *Instrumentation) dialHook(dial func(ctx context.Context, network, addr string) (net.Conn, error)) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, ok := ctx.Value(connContextKey{}).(Conn)
		if !ok {
			conn = dialConn(addr)
		}
		return i.Connect(ctx, conn, func(ctx context.Context) (net.Conn, error) {
			return dial(ctx, network, addr)
		})
	}
}

// WrapTransport returns a RoundTripper tracing the requests and the
// connections of a clone of t.
func WrapTransport(t *http.Transport, opts ...Option) http.RoundTripper {
	return New(opts...).Transport(t)
}

// dialConn is the state of a connection dialed outside of a traced request,
// known only by its address.
type dialConn string

func (c dialConn) split() (string, int) {
	host, p, err := net.SplitHostPort(string(c))
	if err != nil {
		return string(c), 0
	}
	port, _ := strconv.Atoi(p)
	return host, port
}

func (c dialConn) Started() bool { return true }
func (c dialConn) UseTLS() bool  { return false }

func (c dialConn) Address() string {
	host, _ := c.split()
	return host
}

func (c dialConn) Port() int {
	_, port := c.split()
	return port
}

func (c dialConn) Proxy() bool          { return false }
func (c dialConn) ProxyAddress() string { return "" }
func (c dialConn) ProxyPort() int       { return 0 }
