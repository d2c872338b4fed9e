// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package client provides [context.Context]-aware, traced alternatives to the
// short-hand request functions [http.Get], [http.Head], [http.Post], and
// [http.PostForm]. Passing the context lets the client span join the trace
// of the caller.
package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	nethttp "github.com/DataDog/dd-otel-nethttp"
)

var (
	mu            sync.RWMutex
	defaultClient *http.Client
)

// Use sets the client the package functions send requests with. A nil client
// restores the default one, built on first use with nethttp.WrapTransport
// and the global tracer provider.
func Use(c *http.Client) {
	mu.Lock()
	defer mu.Unlock()
	defaultClient = c
}

func getClient() *http.Client {
	mu.RLock()
	c := defaultClient
	mu.RUnlock()
	if c != nil {
		return c
	}
	mu.Lock()
	defer mu.Unlock()
	if defaultClient == nil {
		defaultClient = &http.Client{Transport: nethttp.WrapTransport(nil)}
	}
	return defaultClient
}

// Get is a [context.Context] aware version of [http.Get].
func Get(ctx context.Context, url string) (resp *http.Response, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return getClient().Do(req)
}

// Head is a [context.Context] aware version of [http.Head].
func Head(ctx context.Context, url string) (resp *http.Response, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, err
	}
	return getClient().Do(req)
}

// Post is a [context.Context] aware version of [http.Post].
func Post(ctx context.Context, url string, contentType string, body io.Reader) (resp *http.Response, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return getClient().Do(req)
}

// PostForm is a [context.Context] aware version of [http.PostForm].
func PostForm(ctx context.Context, url string, data url.Values) (resp *http.Response, err error) {
	return Post(ctx, url, "application/x-www-form-urlencoded", strings.NewReader(data.Encode()))
}
