// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package nethttp

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
)

// uriFromRequest returns the absolute URI req is sent to. An absolute request
// URL is returned as is; otherwise the URL is resolved against the scheme,
// address and port of conn.
func uriFromRequest(conn Conn, req *http.Request) (*url.URL, error) {
	if req.URL != nil && req.URL.IsAbs() {
		return req.URL, nil
	}
	base, err := url.Parse(schemes[conn.UseTLS()] + "://" + net.JoinHostPort(conn.Address(), strconv.Itoa(conn.Port())))
	if err != nil {
		return nil, err
	}
	if req.URL == nil {
		return base, nil
	}
	return base.ResolveReference(req.URL), nil
}
