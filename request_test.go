// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package nethttp

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/DataDog/dd-otel-nethttp/clientcontext"
	"github.com/DataDog/dd-otel-nethttp/ext"
)

func relativeRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, path, nil)
	require.NoError(t, err)
	return req
}

var exampleConn = testConn{tls: true, address: "example.com", port: 443}

func TestRequest(t *testing.T) {
	calls := &callLog{}
	inst, sr := newTestInstrumentation(t, WithPropagators(recordingPropagator{propagation.TraceContext{}, calls}))
	req := relativeRequest(t, http.MethodPost, "/x?page=2")

	var sent *http.Request
	res, err := inst.Request(exampleConn, req, func(r *http.Request) (*http.Response, error) {
		calls.add("next")
		sent = r
		return &http.Response{StatusCode: http.StatusCreated, Status: "201 Created"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	assert.Equal(t, []string{"inject", "next"}, calls.get())
	require.NotNil(t, sent)
	assert.NotSame(t, req, sent)
	assert.NotEmpty(t, sent.Header.Get("traceparent"))
	assert.Empty(t, req.Header.Get("traceparent"))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "HTTP POST", s.Name())
	assert.Equal(t, trace.SpanKindClient, s.SpanKind())
	assert.Equal(t, trace.SpanContextFromContext(sent.Context()).SpanID(), s.SpanContext().SpanID())
	assert.Equal(t, "POST", spanAttr(t, s, ext.HTTPMethod).AsString())
	assert.Equal(t, "https://example.com:443/x?page=2", spanAttr(t, s, ext.HTTPURL).AsString())
	assert.Equal(t, "/x?page=2", spanAttr(t, s, ext.HTTPTarget).AsString())
	assert.Equal(t, "example.com", spanAttr(t, s, ext.NetPeerName).AsString())
	assert.Equal(t, int64(443), spanAttr(t, s, ext.NetPeerPort).AsInt64())
	assert.Equal(t, int64(201), spanAttr(t, s, ext.HTTPStatusCode).AsInt64())
	assert.Equal(t, codes.Unset, s.Status().Code)
}

func TestRequestUnstarted(t *testing.T) {
	calls := &callLog{}
	inst, sr := newTestInstrumentation(t, WithPropagators(recordingPropagator{propagation.TraceContext{}, calls}))
	req := relativeRequest(t, http.MethodGet, "/bootstrap")

	var sent *http.Request
	_, err := inst.Request(testConn{unstarted: true, address: "example.com", port: 80}, req, func(r *http.Request) (*http.Response, error) {
		sent = r
		return &http.Response{StatusCode: http.StatusOK}, nil
	})
	require.NoError(t, err)
	assert.Same(t, req, sent)
	assert.Empty(t, sent.Header.Get("traceparent"))
	assert.Empty(t, calls.get())
	assert.Empty(t, sr.Started())
	assert.Empty(t, sr.Ended())
}

func TestRequestError(t *testing.T) {
	wantErr := errors.New("connection reset by peer")

	t.Run("propagated", func(t *testing.T) {
		inst, sr := newTestInstrumentation(t)
		res, err := inst.Request(exampleConn, relativeRequest(t, http.MethodGet, "/"), func(*http.Request) (*http.Response, error) {
			return nil, wantErr
		})
		assert.Nil(t, res)
		assert.Same(t, wantErr, err)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Len(t, sr.Started(), 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.False(t, hasAttr(spans[0], ext.HTTPStatusCode))
		require.Len(t, spans[0].Events(), 1)
		assert.Equal(t, "exception", spans[0].Events()[0].Name)
	})

	t.Run("error-check", func(t *testing.T) {
		inst, sr := newTestInstrumentation(t, WithErrorCheck(func(err error) bool {
			return !errors.Is(err, context.Canceled)
		}))
		_, err := inst.Request(exampleConn, relativeRequest(t, http.MethodGet, "/"), func(*http.Request) (*http.Response, error) {
			return nil, context.Canceled
		})
		assert.ErrorIs(t, err, context.Canceled)
		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Unset, spans[0].Status().Code)
	})

	t.Run("panic", func(t *testing.T) {
		inst, sr := newTestInstrumentation(t)
		assert.Panics(t, func() {
			_, _ = inst.Request(exampleConn, relativeRequest(t, http.MethodGet, "/"), func(*http.Request) (*http.Response, error) {
				panic("boom")
			})
		})
		assert.Len(t, sr.Ended(), 1)
	})
}

func TestRequestStatusError(t *testing.T) {
	inst, sr := newTestInstrumentation(t)
	res, err := inst.Request(exampleConn, relativeRequest(t, http.MethodGet, "/missing"), func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNotFound, Status: "404 Not Found"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, int64(404), spanAttr(t, spans[0], ext.HTTPStatusCode).AsInt64())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestRequestAttributes(t *testing.T) {
	inst, sr := newTestInstrumentation(t,
		WithPeerService("users"),
		WithHeaderTags([]string{"X-Request-Id"}),
		WithQueryString(false),
		WithURLQuantizer(func(u *url.URL) string { return "/users/{id}" }),
		WithSpanOptions(trace.WithAttributes(attribute.String("team", "core"))),
	)
	ctx := clientcontext.With(context.Background(), ext.PeerService.String("accounts"), attribute.String("tenant", "acme"))
	req := relativeRequest(t, http.MethodDelete, "/users/42?force=true").WithContext(ctx)
	req.Header.Set("X-Request-Id", "abc")

	_, err := inst.Request(testConn{address: "users.internal", port: 8080}, req, func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNoContent}, nil
	})
	require.NoError(t, err)

	s := spanNamed(t, sr, "HTTP DELETE")
	assert.Equal(t, "accounts", spanAttr(t, s, ext.PeerService).AsString())
	assert.Equal(t, "acme", spanAttr(t, s, "tenant").AsString())
	assert.Equal(t, "core", spanAttr(t, s, "team").AsString())
	assert.Equal(t, "http://users.internal:8080/users/42", spanAttr(t, s, ext.HTTPURL).AsString())
	assert.Equal(t, "/users/{id}", spanAttr(t, s, ext.HTTPRoute).AsString())
	assert.Equal(t, []string{"abc"}, spanAttr(t, s, "http.request.header.x_request_id").AsStringSlice())

	t.Run("peer-service", func(t *testing.T) {
		_, err := inst.Request(exampleConn, relativeRequest(t, http.MethodPut, "/"), func(*http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "users", spanAttr(t, spanNamed(t, sr, "HTTP PUT"), ext.PeerService).AsString())
	})
}

func TestRequestUntraced(t *testing.T) {
	for name, tt := range map[string]struct {
		opts []Option
		conn testConn
	}{
		"ignored": {
			opts: []Option{WithIgnoreRequest(func(r *http.Request) bool { return r.URL.Path == "/health" })},
			conn: exampleConn,
		},
		"invalid-uri": {
			conn: testConn{address: "exa mple.com", port: 80},
		},
	} {
		t.Run(name, func(t *testing.T) {
			inst, sr := newTestInstrumentation(t, tt.opts...)
			req := relativeRequest(t, http.MethodGet, "/health")
			var sent *http.Request
			_, err := inst.Request(tt.conn, req, func(r *http.Request) (*http.Response, error) {
				sent = r
				return &http.Response{StatusCode: http.StatusOK}, nil
			})
			require.NoError(t, err)
			assert.Same(t, req, sent)
			assert.Empty(t, sr.Ended())
		})
	}
}

func TestRequestPropagationDisabled(t *testing.T) {
	calls := &callLog{}
	inst, sr := newTestInstrumentation(t,
		WithPropagators(recordingPropagator{propagation.TraceContext{}, calls}),
		WithPropagation(false),
	)
	_, err := inst.Request(exampleConn, relativeRequest(t, http.MethodGet, "/"), func(r *http.Request) (*http.Response, error) {
		assert.Empty(t, r.Header.Get("traceparent"))
		return &http.Response{StatusCode: http.StatusOK}, nil
	})
	require.NoError(t, err)
	assert.Empty(t, calls.get())
	assert.Len(t, sr.Ended(), 1)
}

func TestRequestHooks(t *testing.T) {
	var before, after int
	inst, sr := newTestInstrumentation(t,
		WithBefore(func(req *http.Request, span trace.Span) {
			before++
			span.SetAttributes(attribute.String("before", req.Method))
		}),
		WithAfter(func(res *http.Response, span trace.Span) {
			after++
			assert.Nil(t, res)
			span.SetAttributes(attribute.Bool("after", true))
		}),
	)
	_, err := inst.Request(exampleConn, relativeRequest(t, http.MethodGet, "/"), func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: i/o timeout")
	})
	require.Error(t, err)
	assert.Equal(t, 1, before)
	assert.Equal(t, 1, after)

	s := spanNamed(t, sr, "HTTP GET")
	assert.Equal(t, "GET", spanAttr(t, s, "before").AsString())
	assert.True(t, spanAttr(t, s, "after").AsBool())
}
