// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

// Package env reads the environment variables understood by the
// instrumentation. Every variable must be listed in supported; reading any
// other name panics so that typos are caught by tests.
package env

import (
	"os"
	"strconv"
)

var supported = map[string]struct{}{
	"DD_LOGGING_RATE":                          {},
	"DD_TRACE_DEBUG":                           {},
	"DD_TRACE_HEADER_TAGS":                     {},
	"DD_TRACE_HTTP_CLIENT_CONFIG_FILE":         {},
	"DD_TRACE_HTTP_CLIENT_ERROR_STATUSES":      {},
	"DD_TRACE_HTTP_CLIENT_PROPAGATION":         {},
	"DD_TRACE_HTTP_CLIENT_TAG_QUERY_STRING":    {},
	"DD_TRACE_OBFUSCATION_QUERY_STRING_REGEXP": {},
	"DD_TRACE_PEER_SERVICE":                    {},
}

// Supported reports whether name is a known configuration variable.
func Supported(name string) bool {
	_, ok := supported[name]
	return ok
}

// Get is a wrapper around os.Getenv restricted to supported variables.
func Get(name string) string {
	v, _ := Lookup(name)
	return v
}

// Lookup is a wrapper around os.LookupEnv restricted to supported variables.
func Lookup(name string) (string, bool) {
	if !Supported(name) {
		panic("env: unsupported configuration variable " + name)
	}
	return os.LookupEnv(name)
}

// Bool returns the parsed boolean value of an environment variable, or
// def if it is unset or fails to parse.
func Bool(name string, def bool) bool {
	v, err := strconv.ParseBool(Get(name))
	if err != nil {
		return def
	}
	return v
}
