// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package nethttp

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrSessionStarted is returned by Start on a started session.
	ErrSessionStarted = errors.New("nethttp: session already started")
	// ErrSessionNotStarted is returned by Finish on a session that is not started.
	ErrSessionNotStarted = errors.New("nethttp: session not started")
)

// A SessionOption configures a Session.
type SessionOption func(*Session)

// WithTLS makes the session talk HTTPS using cfg. A nil cfg uses the
// default TLS configuration.
func WithTLS(cfg *tls.Config) SessionOption {
	return func(s *Session) {
		s.useTLS = true
		s.tlsConfig = cfg
	}
}

// WithProxy sends every request of the session through the HTTP proxy at
// address:port.
func WithProxy(address string, port int) SessionOption {
	return func(s *Session) {
		s.proxyAddress = address
		s.proxyPort = port
	}
}

// WithDialer sets the dialer used to open connections.
func WithDialer(d *net.Dialer) SessionOption {
	return func(s *Session) {
		s.dialer = d
	}
}

// Session is a persistent client for a single host. Its connections are
// opened between Start and Finish; a request sent through Do on a session
// that is not started starts it for the duration of that request.
//
// Session implements [Conn]: requests go through [Instrumentation.Request]
// and dials through [Instrumentation.Connect].
type Session struct {
	inst         *Instrumentation
	address      string
	port         int
	useTLS       bool
	tlsConfig    *tls.Config
	proxyAddress string
	proxyPort    int
	dialer       *net.Dialer

	mu        sync.Mutex
	started   atomic.Bool
	transport *http.Transport
}

// NewSession returns a session talking to address:port. The session is not
// started.
func (i *Instrumentation) NewSession(address string, port int, opts ...SessionOption) *Session {
	s := &Session{
		inst:    i,
		address: address,
		port:    port,
		dialer: &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		},
	}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

func (s *Session) Started() bool        { return s.started.Load() }
func (s *Session) UseTLS() bool         { return s.useTLS }
func (s *Session) Address() string      { return s.address }
func (s *Session) Port() int            { return s.port }
func (s *Session) Proxy() bool          { return s.proxyAddress != "" }
func (s *Session) ProxyAddress() string { return s.proxyAddress }
func (s *Session) ProxyPort() int       { return s.proxyPort }

// Start makes the session ready to send requests.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.Load() {
		return ErrSessionStarted
	}
	if s.transport == nil {
		s.transport = s.newTransport()
	}
	s.started.Store(true)
	return nil
}

// Finish closes the idle connections of the session.
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started.Load() {
		return ErrSessionNotStarted
	}
	s.started.Store(false)
	s.transport.CloseIdleConnections()
	return nil
}

func (s *Session) newTransport() *http.Transport {
	t := &http.Transport{
		DialContext:         s.dial,
		TLSClientConfig:     s.tlsConfig,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if s.Proxy() {
		t.Proxy = http.ProxyURL(&url.URL{
			Scheme: "http",
			Host:   net.JoinHostPort(s.proxyAddress, strconv.Itoa(s.proxyPort)),
		})
	}
	return t
}

func (s *Session) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	return s.inst.Connect(ctx, s, func(ctx context.Context) (net.Conn, error) {
		return s.dialer.DialContext(ctx, network, addr)
	})
}

// Do sends req to the session host. req.URL may be relative, in which case
// it is resolved against the session address.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	return s.inst.Request(s, req, s.transmit)
}

func (s *Session) transmit(req *http.Request) (*http.Response, error) {
	if !s.Started() {
		switch err := s.Start(); {
		case errors.Is(err, ErrSessionStarted):
			// started concurrently
		case err != nil:
			return nil, err
		default:
			defer s.Finish()
		}
		return s.Do(req)
	}
	if req.URL == nil || !req.URL.IsAbs() {
		u, err := uriFromRequest(s, req)
		if err != nil {
			return nil, err
		}
		r2 := *req
		r2.URL = u
		req = &r2
	}
	return s.transport.RoundTrip(req)
}

// Get issues a GET for path.
func (s *Session) Get(ctx context.Context, path string) (*http.Response, error) {
	return s.send(ctx, http.MethodGet, path, "", nil)
}

// Head issues a HEAD for path.
func (s *Session) Head(ctx context.Context, path string) (*http.Response, error) {
	return s.send(ctx, http.MethodHead, path, "", nil)
}

// Post issues a POST of body to path.
func (s *Session) Post(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	return s.send(ctx, http.MethodPost, path, contentType, body)
}

func (s *Session) send(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return s.Do(req)
}
