// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/propagation"

	nethttp "github.com/DataDog/dd-otel-nethttp"
	"github.com/DataDog/dd-otel-nethttp/httpattrs"
	"github.com/DataDog/dd-otel-nethttp/internal/config"
	"github.com/DataDog/dd-otel-nethttp/internal/log"
	"github.com/DataDog/dd-otel-nethttp/internal/version"
)

type options struct {
	method      string
	headers     []string
	data        string
	proxy       string
	peerService string
	exporter    string
	endpoint    string
	service     string
	configFile  string
	transport   bool
	insecure    bool
	timeout     time.Duration
	verbose     bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:     "httptrace [flags] URL",
		Short:   "Send one traced HTTP request",
		Version: version.Tag,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
		SilenceUsage: true,
	}
	f := cmd.Flags()
	f.StringVarP(&opts.method, "method", "X", http.MethodGet, "request method")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, "request header as 'Name: value', repeatable")
	f.StringVarP(&opts.data, "data", "d", "", "request body")
	f.StringVar(&opts.proxy, "proxy", "", "HTTP proxy as host:port")
	f.StringVar(&opts.peerService, "peer-service", "", "peer.service attribute of the spans")
	f.StringVar(&opts.exporter, "exporter", exporterNone, "span exporter: otlp-http, otlp-grpc, datadog or none")
	f.StringVar(&opts.endpoint, "endpoint", "", "exporter endpoint as host:port")
	f.StringVar(&opts.service, "service", "httptrace", "service name reported by the exporter")
	f.StringVar(&opts.configFile, "config", "", "instrumentation configuration file")
	f.BoolVar(&opts.transport, "transport", false, "send through a wrapped http.Transport instead of a session")
	f.BoolVarP(&opts.insecure, "insecure", "k", false, "skip TLS certificate verification")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func run(ctx context.Context, out io.Writer, opts options, rawURL string) error {
	if opts.verbose {
		log.SetLevel(log.LevelDebug)
	}
	defer log.Flush()
	if opts.configFile != "" {
		// Read by nethttp.New below.
		if err := os.Setenv(config.EnvConfigFile, opts.configFile); err != nil {
			return err
		}
	}
	target, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return fmt.Errorf("invalid URL %q: scheme must be http or https", rawURL)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	tp, err := newTracerProvider(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.shutdown(context.Background()); err != nil {
			log.Warn("Flushing spans failed: %v", err)
		}
	}()

	inst := nethttp.New(
		nethttp.WithTracerProvider(tp.provider),
		nethttp.WithPropagators(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})),
		nethttp.WithPeerService(opts.peerService),
	)

	var body io.Reader
	if opts.data != "" {
		body = strings.NewReader(opts.data)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(opts.method), target.String(), body)
	if err != nil {
		return err
	}
	for _, h := range opts.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header %q: expected 'Name: value'", h)
		}
		req.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	var tlsConfig *tls.Config
	if opts.insecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	var res *http.Response
	if opts.transport {
		res, err = sendThroughTransport(inst, req, opts.proxy, tlsConfig)
	} else {
		res, err = sendThroughSession(inst, req, opts.proxy, tlsConfig)
	}
	if err != nil {
		return err
	}
	defer res.Body.Close()
	n, err := io.Copy(io.Discard, res.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	fmt.Fprintf(out, "%s %s (%d bytes)\n", res.Proto, res.Status, n)
	return nil
}

func sendThroughTransport(inst *nethttp.Instrumentation, req *http.Request, proxy string, tlsConfig *tls.Config) (*http.Response, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = tlsConfig
	if proxy != "" {
		t.Proxy = http.ProxyURL(&url.URL{Scheme: "http", Host: proxy})
	}
	rt := inst.Transport(t)
	defer rt.(interface{ CloseIdleConnections() }).CloseIdleConnections()
	return rt.RoundTrip(req)
}

func sendThroughSession(inst *nethttp.Instrumentation, req *http.Request, proxy string, tlsConfig *tls.Config) (*http.Response, error) {
	var sessOpts []nethttp.SessionOption
	if req.URL.Scheme == "https" {
		sessOpts = append(sessOpts, nethttp.WithTLS(tlsConfig))
	}
	if proxy != "" {
		host, p, err := net.SplitHostPort(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", proxy, err)
		}
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy port %q: %w", p, err)
		}
		sessOpts = append(sessOpts, nethttp.WithProxy(host, port))
	}
	sess := inst.NewSession(req.URL.Hostname(), httpattrs.Port(req.URL), sessOpts...)
	if err := sess.Start(); err != nil {
		return nil, err
	}
	defer sess.Finish()

	// The session resolves relative URLs against its own address.
	req.URL = &url.URL{Path: req.URL.Path, RawPath: req.URL.RawPath, RawQuery: req.URL.RawQuery}
	return sess.Do(req)
}
