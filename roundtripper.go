// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package nethttp

import "net/http"

type roundTripper struct {
	base http.RoundTripper
	inst *Instrumentation
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt.inst.Request(newRequestConn(req), req, rt.base.RoundTrip)
}

// Unwrap returns the original http.RoundTripper.
func (rt *roundTripper) Unwrap() http.RoundTripper {
	return rt.base
}

// RoundTripper returns a RoundTripper which traces all requests sent through
// base. A nil base means http.DefaultTransport.
func (i *Instrumentation) RoundTripper(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if wrapped, ok := base.(*roundTripper); ok {
		base = wrapped.base
	}
	return &roundTripper{base: base, inst: i}
}

// WrapRoundTripper returns a new RoundTripper which traces all requests sent
// over the transport.
func WrapRoundTripper(rt http.RoundTripper, opts ...Option) http.RoundTripper {
	return New(opts...).RoundTripper(rt)
}

// WrapClient modifies the given client's transport to augment it with tracing and returns it.
func WrapClient(c *http.Client, opts ...Option) *http.Client {
	c.Transport = WrapRoundTripper(c.Transport, opts...)
	return c
}
