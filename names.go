// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package nethttp

import "sync"

const connectSpanName = "HTTP CONNECT"

// schemes maps the TLS flag of a connection to its URL scheme.
var schemes = map[bool]string{
	false: "http",
	true:  "https",
}

// spanNames memoizes "HTTP {METHOD}" per method. Entries are never removed
// or overwritten.
type spanNames struct {
	m sync.Map // string -> string
}

func (n *spanNames) get(method string) string {
	if name, ok := n.m.Load(method); ok {
		return name.(string)
	}
	name, _ := n.m.LoadOrStore(method, "HTTP "+method)
	return name.(string)
}
