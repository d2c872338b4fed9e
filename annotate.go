// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package nethttp

import (
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/DataDog/dd-otel-nethttp/ext"
)

// annotateSpanWithResponse records the status code of res on span and sets
// the span status from it. A nil response, or one without a status code,
// leaves the span untouched.
func annotateSpanWithResponse(span trace.Span, res *http.Response, mapper StatusMapper) {
	if res == nil {
		return
	}
	code := statusCode(res)
	if code <= 0 {
		return
	}
	span.SetAttributes(ext.HTTPStatusCode.Int(code))
	span.SetStatus(mapper(code))
}

// statusCode returns res.StatusCode, or the code at the start of res.Status
// (e.g. "404 Not Found") when the former is unset.
func statusCode(res *http.Response) int {
	if res.StatusCode != 0 {
		return res.StatusCode
	}
	head, _, _ := strings.Cut(strings.TrimSpace(res.Status), " ")
	code, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return code
}
