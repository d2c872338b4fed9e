// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022 Datadog, Inc.

package config

import (
	"strconv"
	"strings"

	"github.com/DataDog/dd-otel-nethttp/internal/log"
)

// GetErrorCodesFromInput parses a comma-separated string s to determine which codes are to be considered errors
// Its purpose is to support the DD_TRACE_HTTP_CLIENT_ERROR_STATUSES env var
// If error condition cannot be determined from s, `nil` is returned
// e.g, input of "100,200,300-400" returns a function that returns true on 100, 200, and all values between 300-400, inclusive
// any input that cannot be translated to integer values returns nil
func GetErrorCodesFromInput(s string) func(statusCode int) bool {
	if s == "" {
		return nil
	}
	var codes []int
	var ranges [][2]int
	for _, val := range strings.Split(s, ",") {
		val = strings.TrimSpace(val)
		// "-" indicates a range of values
		if before, after, ok := strings.Cut(val, "-"); ok {
			lo, err := strconv.Atoi(before)
			if err != nil {
				log.Debug("Trouble parsing %v due to entry %v, using default error status determination logic", s, val)
				return nil
			}
			hi, err := strconv.Atoi(after)
			if err != nil {
				log.Debug("Trouble parsing %v due to entry %v, using default error status determination logic", s, val)
				return nil
			}
			ranges = append(ranges, [2]int{lo, hi})
			continue
		}
		code, err := strconv.Atoi(val)
		if err != nil {
			log.Debug("Trouble parsing %v due to entry %v, using default error status determination logic", s, val)
			return nil
		}
		codes = append(codes, code)
	}
	return func(statusCode int) bool {
		for _, c := range codes {
			if c == statusCode {
				return true
			}
		}
		for _, bounds := range ranges {
			if statusCode >= bounds[0] && statusCode <= bounds[1] {
				return true
			}
		}
		return false
	}
}

// IsErrorStatus is the default status check. Codes in [100, 400) are not
// errors.
func IsErrorStatus(statusCode int) bool {
	return statusCode < 100 || statusCode >= 400
}
