package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"
	"strings"

	"golang.org/x/net/http2"

	"github.com/cineshelf/cineshelf/internal/config"
)

// configureHTTP2 enables HTTP/2 on the transport unless it is disabled.
//
// DISABLE_HTTP2=true forces HTTP/1.1. Proxied connections also fall back to
// HTTP/1.1 unless FORCE_HTTP2=true, since many corporate proxies mishandle
// multiplexed streams.
func configureHTTP2(tr *nethttp.Transport, proxied bool) {
	tr.ForceAttemptHTTP2 = true
	_ = http2.ConfigureTransport(tr)

	disable := os.Getenv("DISABLE_HTTP2") == "true"
	if proxied && os.Getenv("FORCE_HTTP2") != "true" {
		disable = true
	}
	if disable {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}
}

// proxyActive reports whether requests will go through a proxy.
func proxyActive(cfg *config.Config) bool {
	switch strings.ToLower(cfg.ProxyMode) {
	case "no-proxy", "":
		return false
	case "system":
		return os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" ||
			os.Getenv("http_proxy") != "" || os.Getenv("https_proxy") != ""
	default:
		return cfg.ProxyHost != ""
	}
}

// HTTP2Enabled reports whether the client's transport will negotiate HTTP/2.
func HTTP2Enabled(c *nethttp.Client) bool {
	tr, ok := c.Transport.(*nethttp.Transport)
	if !ok {
		return false
	}
	return len(tr.TLSNextProto) > 0
}
