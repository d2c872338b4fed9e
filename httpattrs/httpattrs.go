// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022 Datadog, Inc.

// Package httpattrs derives span attributes from an outbound HTTP request.
package httpattrs

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/DataDog/dd-otel-nethttp/ext"
)

// Options controls which request data ends up in span attributes.
type Options struct {
	// PeerService is the logical name of the service being called.
	PeerService string
	// HeaderTags lists the request headers captured as attributes.
	HeaderTags []string
	// QueryString reports whether the query string is kept in http.url and
	// http.target.
	QueryString bool
	// QueryStringRegexp obfuscates matches in the query string. A nil value
	// disables obfuscation.
	QueryStringRegexp *regexp.Regexp
	// URLQuantizer maps a URL to a low-cardinality route. An empty result
	// leaves http.route unset.
	URLQuantizer func(u *url.URL) string
}

const redacted = "<redacted>"

// FromRequest returns the attributes describing a request with the given
// method sent to the absolute URL u.
func FromRequest(method string, u *url.URL, opts Options) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		ext.HTTPMethod.String(method),
		ext.HTTPScheme.String(u.Scheme),
		ext.HTTPTarget.String(Target(u, opts)),
		ext.HTTPURL.String(URL(u, opts)),
		ext.NetPeerName.String(u.Hostname()),
	}
	if port := Port(u); port > 0 {
		attrs = append(attrs, ext.NetPeerPort.Int(port))
	}
	if opts.URLQuantizer != nil {
		if route := opts.URLQuantizer(u); route != "" {
			attrs = append(attrs, ext.HTTPRoute.String(route))
		}
	}
	return attrs
}

// URL returns the string form of u suitable for the http.url attribute:
// userinfo and fragment are dropped and the query is filtered per opts.
func URL(u *url.URL, opts Options) string {
	c := *u
	c.User = nil
	c.Fragment = ""
	c.RawFragment = ""
	c.RawQuery = query(u, opts)
	c.ForceQuery = false
	return c.String()
}

// Target returns the path and filtered query of u.
func Target(u *url.URL, opts Options) string {
	target := u.EscapedPath()
	if target == "" {
		target = "/"
	}
	if q := query(u, opts); q != "" {
		target += "?" + q
	}
	return target
}

func query(u *url.URL, opts Options) string {
	if !opts.QueryString || u.RawQuery == "" {
		return ""
	}
	if opts.QueryStringRegexp == nil {
		return u.RawQuery
	}
	return opts.QueryStringRegexp.ReplaceAllString(u.RawQuery, redacted)
}

// Port returns the port of u, falling back to the scheme's default port.
// It returns 0 when neither is known.
func Port(u *url.URL) int {
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		return port
	}
	switch u.Scheme {
	case "http":
		return 80
	case "https":
		return 443
	}
	return 0
}

// HeaderTags returns one http.request.header.<name> attribute per header in
// names that is present in h. Header names are lower-cased and dashes become
// underscores.
func HeaderTags(h http.Header, names []string) []attribute.KeyValue {
	if len(names) == 0 {
		return nil
	}
	var attrs []attribute.KeyValue
	for _, name := range names {
		values := h.Values(name)
		if len(values) == 0 {
			continue
		}
		key := ext.HTTPRequestHeaderPrefix + strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
		attrs = append(attrs, attribute.StringSlice(key, values))
	}
	return attrs
}

// Merge concatenates the attribute sets in order. When a key appears more
// than once the last value wins, but the key keeps the position of its first
// occurrence.
func Merge(sets ...[]attribute.KeyValue) []attribute.KeyValue {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	out := make([]attribute.KeyValue, 0, n)
	index := make(map[attribute.Key]int, n)
	for _, s := range sets {
		for _, kv := range s {
			if i, ok := index[kv.Key]; ok {
				out[i] = kv
				continue
			}
			index[kv.Key] = len(out)
			out = append(out, kv)
		}
	}
	return out
}
