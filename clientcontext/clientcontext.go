// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2024 Datadog, Inc.

// Package clientcontext carries ambient attributes for outbound HTTP calls
// in a [context.Context]. Every client span started with such a context
// gets these attributes before the request-specific ones.
//
//	ctx = clientcontext.With(ctx, ext.PeerService.String("billing"))
//	resp, err := client.Do(req.WithContext(ctx))
package clientcontext

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/DataDog/dd-otel-nethttp/httpattrs"
)

type contextKey struct{}

// With returns a copy of ctx carrying attrs in addition to the attributes
// already present. Values set here override outer values with the same key.
func With(ctx context.Context, attrs ...attribute.KeyValue) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, httpattrs.Merge(Attributes(ctx), attrs))
}

// Attributes returns the ambient attributes stored in ctx. The returned
// slice must not be modified.
func Attributes(ctx context.Context) []attribute.KeyValue {
	attrs, _ := ctx.Value(contextKey{}).([]attribute.KeyValue)
	return attrs
}
