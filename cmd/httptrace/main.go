// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Command httptrace sends a single traced HTTP request and prints the
// response status. It is meant to check that client spans reach a backend.
//
//	httptrace --exporter otlp-http --endpoint localhost:4318 https://example.com/health
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
