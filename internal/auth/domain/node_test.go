package domain

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalNode(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		tls      bool
		headers  map[string]string
		opts     NodeOptions
		expected string
	}{
		{name: "PlainHTTP", host: "host1.com", expected: "http://host1.com"},
		{name: "DefaultHTTPPortStripped", host: "host1.com:80", expected: "http://host1.com"},
		{name: "HTTPOn443Kept", host: "host1.com:443", expected: "http://host1.com:443"},
		{name: "TLS", host: "host2.com", tls: true, expected: "https://host2.com"},
		{name: "DefaultHTTPSPortStripped", host: "host2.com:443", tls: true, expected: "https://host2.com"},
		{name: "CustomPort", host: "host3.com:444", tls: true, expected: "https://host3.com:444"},
		{name: "Lowercased", host: "HOST1.com", expected: "http://host1.com"},
		{name: "IPv6", host: "[::1]:8080", expected: "http://[::1]:8080"},
		{
			name:     "ForwardedIgnoredByDefault",
			host:     "internal:8080",
			headers:  map[string]string{"X-Forwarded-Proto": "https", "X-Forwarded-Host": "host2.com"},
			expected: "http://internal:8080",
		},
		{
			name:     "ForwardedTrusted",
			host:     "internal:8080",
			headers:  map[string]string{"X-Forwarded-Proto": "https, http", "X-Forwarded-Host": "host2.com, internal"},
			opts:     NodeOptions{TrustForwardedHeaders: true},
			expected: "https://host2.com",
		},
		{
			name:     "PathPrefix",
			host:     "host1.com",
			opts:     NodeOptions{PathPrefix: "/storage"},
			expected: "http://host1.com/storage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
			r.Host = tt.host
			if tt.tls {
				r.TLS = &tls.ConnectionState{}
			} else {
				r.TLS = nil
			}
			for key, value := range tt.headers {
				r.Header.Set(key, value)
			}

			assert.Equal(t, tt.expected, CanonicalNode(r, tt.opts))
		})
	}
}

func TestRequestOrigin(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "host3.com:444"
	r.TLS = &tls.ConnectionState{}

	assert.Equal(t, Origin{Scheme: "https", Host: "host3.com", Port: "444"}, RequestOrigin(r, NodeOptions{}))

	r.Host = "host1.com"
	r.TLS = nil
	assert.Equal(t, Origin{Scheme: "http", Host: "host1.com", Port: "80"}, RequestOrigin(r, NodeOptions{}))
}
