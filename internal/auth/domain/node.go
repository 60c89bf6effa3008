package domain

import (
	"net"
	"net/http"
	"strings"
)

// NodeOptions controls how the node a request targets is determined.
type NodeOptions struct {
	// TrustForwardedHeaders takes scheme and host from X-Forwarded-Proto and
	// X-Forwarded-Host. Enable only behind a proxy that sets them.
	TrustForwardedHeaders bool

	// PathPrefix is appended to every node name, for nodes mounted below a path.
	PathPrefix string
}

// Origin is the scheme, host and port a request was addressed to.
type Origin struct {
	Scheme string
	Host   string
	Port   string
}

// Node returns the canonical node name: scheme://host, with the port only when
// it is not the default for the scheme.
func (o Origin) Node() string {
	host := o.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if o.Port == "" || o.Port == DefaultPort(o.Scheme) {
		return o.Scheme + "://" + host
	}
	return o.Scheme + "://" + host + ":" + o.Port
}

// DefaultPort returns 443 for https and 80 otherwise.
func DefaultPort(scheme string) string {
	if scheme == "https" {
		return "443"
	}
	return "80"
}

// RequestOrigin determines the origin a server-side request was addressed to.
func RequestOrigin(r *http.Request, opts NodeOptions) Origin {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	hostport := r.Host

	if opts.TrustForwardedHeaders {
		if proto := firstHeaderValue(r, "X-Forwarded-Proto"); proto != "" {
			scheme = strings.ToLower(proto)
		}
		if host := firstHeaderValue(r, "X-Forwarded-Host"); host != "" {
			hostport = host
		}
	}

	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host = strings.Trim(hostport, "[]")
		port = ""
	}
	if port == "" {
		port = DefaultPort(scheme)
	}

	return Origin{Scheme: scheme, Host: strings.ToLower(host), Port: port}
}

// CanonicalNode returns the node name a request targets.
func CanonicalNode(r *http.Request, opts NodeOptions) string {
	return RequestOrigin(r, opts).Node() + opts.PathPrefix
}

func firstHeaderValue(r *http.Request, name string) string {
	value, _, _ := strings.Cut(r.Header.Get(name), ",")
	return strings.TrimSpace(value)
}
