// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package main

import (
	"context"
	"fmt"

	ddotel "github.com/DataDog/dd-trace-go/v2/ddtrace/opentelemetry"
	ddtracer "github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	exporterOTLPHTTP = "otlp-http"
	exporterOTLPGRPC = "otlp-grpc"
	exporterDatadog  = "datadog"
	exporterNone     = "none"
)

// tracerProvider pairs a provider with the function flushing and stopping it.
type tracerProvider struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

func newTracerProvider(ctx context.Context, opts options) (*tracerProvider, error) {
	switch opts.exporter {
	case exporterNone, "":
		return &tracerProvider{
			provider: noop.NewTracerProvider(),
			shutdown: func(context.Context) error { return nil },
		}, nil
	case exporterDatadog:
		tracerOpts := []ddtracer.StartOption{ddtracer.WithService(opts.service)}
		if opts.endpoint != "" {
			tracerOpts = append(tracerOpts, ddtracer.WithAgentAddr(opts.endpoint))
		}
		p := ddotel.NewTracerProvider(tracerOpts...)
		return &tracerProvider{
			provider: p,
			shutdown: func(context.Context) error { return p.Shutdown() },
		}, nil
	case exporterOTLPHTTP, exporterOTLPGRPC:
		exp, err := newOTLPExporter(ctx, opts)
		if err != nil {
			return nil, err
		}
		res, err := resource.New(ctx, resource.WithAttributes(
			attribute.String("service.name", opts.service),
		))
		if err != nil {
			return nil, fmt.Errorf("failed to create resource: %w", err)
		}
		p := sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)
		return &tracerProvider{provider: p, shutdown: p.Shutdown}, nil
	default:
		return nil, fmt.Errorf("unsupported exporter: %s", opts.exporter)
	}
}

func newOTLPExporter(ctx context.Context, opts options) (sdktrace.SpanExporter, error) {
	if opts.exporter == exporterOTLPGRPC {
		grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
		if opts.endpoint != "" {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithEndpoint(opts.endpoint))
		}
		exp, err := otlptracegrpc.New(ctx, grpcOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
		}
		return exp, nil
	}
	httpOpts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
	if opts.endpoint != "" {
		httpOpts = append(httpOpts, otlptracehttp.WithEndpoint(opts.endpoint))
	}
	exp, err := otlptracehttp.New(ctx, httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
	}
	return exp, nil
}
