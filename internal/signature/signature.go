// Package signature implements the Hawk and MAC Authorization header schemes:
// parsing the header, computing the request MAC on the client side and
// verifying it on the server side.
//
// The payload hash of Hawk is carried through the normalized string as sent by
// the client; it is not recomputed from the body.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/allisson/nodeauth/internal/errors"
)

// Scheme is an Authorization scheme name.
type Scheme string

const (
	SchemeHawk Scheme = "Hawk"
	SchemeMAC  Scheme = "MAC"
)

// ErrMalformedHeader indicates the Authorization header could not be parsed.
var ErrMalformedHeader = errors.Wrap(errors.ErrUnauthorized, "malformed authorization header")

// Credentials are the parsed attributes of an Authorization header.
type Credentials struct {
	Scheme    Scheme
	ID        string
	Timestamp int64
	Nonce     string
	Hash      string
	Ext       string
	MAC       string
}

// Endpoint is the host and port a request was addressed to, as covered by the MAC.
type Endpoint struct {
	Host string
	Port string
}

// EndpointFromURL returns the endpoint of an absolute URL, filling in the
// default port of its scheme.
func EndpointFromURL(u *url.URL) Endpoint {
	port := u.Port()
	if port == "" {
		port = DefaultPort(u.Scheme)
	}
	return Endpoint{Host: strings.ToLower(u.Hostname()), Port: port}
}

// DefaultPort returns the default port of an http or https scheme.
func DefaultPort(scheme string) string {
	if strings.EqualFold(scheme, "https") {
		return "443"
	}
	return "80"
}

var allowedAttributes = map[Scheme]map[string]bool{
	SchemeHawk: {"id": true, "ts": true, "nonce": true, "hash": true, "ext": true, "mac": true, "app": true, "dlg": true},
	SchemeMAC:  {"id": true, "ts": true, "nonce": true, "ext": true, "mac": true},
}

// ParseAuthorization parses a Hawk or MAC Authorization header value.
func ParseAuthorization(header string) (*Credentials, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(header), " ")
	var scheme Scheme
	switch {
	case strings.EqualFold(name, string(SchemeHawk)):
		scheme = SchemeHawk
	case strings.EqualFold(name, string(SchemeMAC)):
		scheme = SchemeMAC
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrMalformedHeader, name)
	}

	attrs, err := parseAttributes(rest)
	if err != nil {
		return nil, err
	}
	for key := range attrs {
		if !allowedAttributes[scheme][key] {
			return nil, fmt.Errorf("%w: unknown attribute %q", ErrMalformedHeader, key)
		}
	}
	for _, key := range []string{"id", "ts", "nonce", "mac"} {
		if attrs[key] == "" {
			return nil, fmt.Errorf("%w: missing %q", ErrMalformedHeader, key)
		}
	}
	ts, err := strconv.ParseInt(attrs["ts"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid timestamp", ErrMalformedHeader)
	}

	return &Credentials{
		Scheme:    scheme,
		ID:        attrs["id"],
		Timestamp: ts,
		Nonce:     attrs["nonce"],
		Hash:      attrs["hash"],
		Ext:       attrs["ext"],
		MAC:       attrs["mac"],
	}, nil
}

func parseAttributes(s string) (map[string]string, error) {
	attrs := make(map[string]string)
	s = strings.TrimSpace(s)
	for s != "" {
		key, rest, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("%w: expected key=\"value\"", ErrMalformedHeader)
		}
		key = strings.TrimSpace(key)
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, `"`) {
			return nil, fmt.Errorf("%w: unquoted value for %q", ErrMalformedHeader, key)
		}
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated value for %q", ErrMalformedHeader, key)
		}
		value := rest[1 : end+1]
		if strings.ContainsAny(value, "\\\n") {
			return nil, fmt.Errorf("%w: invalid character in %q", ErrMalformedHeader, key)
		}
		if _, dup := attrs[key]; dup {
			return nil, fmt.Errorf("%w: duplicate attribute %q", ErrMalformedHeader, key)
		}
		attrs[key] = value

		s = strings.TrimSpace(rest[end+2:])
		if s == "" {
			break
		}
		if s[0] != ',' {
			return nil, fmt.Errorf("%w: expected comma after %q", ErrMalformedHeader, key)
		}
		s = strings.TrimSpace(s[1:])
	}
	return attrs, nil
}

// NormalizedString is the text covered by the request MAC.
func NormalizedString(r *http.Request, creds *Credentials, endpoint Endpoint) string {
	resource := r.URL.RequestURI()
	if creds.Scheme == SchemeMAC {
		return strings.Join([]string{
			strconv.FormatInt(creds.Timestamp, 10),
			creds.Nonce,
			strings.ToUpper(r.Method),
			resource,
			endpoint.Host,
			endpoint.Port,
			creds.Ext,
		}, "\n") + "\n"
	}
	return strings.Join([]string{
		"hawk.1.header",
		strconv.FormatInt(creds.Timestamp, 10),
		creds.Nonce,
		strings.ToUpper(r.Method),
		resource,
		endpoint.Host,
		endpoint.Port,
		creds.Hash,
		creds.Ext,
	}, "\n") + "\n"
}

// ComputeMAC returns base64(HMAC-SHA256(key, normalized string)).
func ComputeMAC(r *http.Request, creds *Credentials, key string, endpoint Endpoint) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(NormalizedString(r, creds, endpoint)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether creds.MAC matches the request, in constant time.
func Verify(r *http.Request, creds *Credentials, key string, endpoint Endpoint) bool {
	expected := ComputeMAC(r, creds, key, endpoint)
	return hmac.Equal([]byte(expected), []byte(creds.MAC))
}

// Sign computes the MAC of an outgoing request addressed by its absolute URL
// and sets its Authorization header.
func Sign(r *http.Request, scheme Scheme, id, key string, ts int64, nonce, ext string) error {
	if r.URL == nil || r.URL.Host == "" {
		return fmt.Errorf("%w: request URL must be absolute", errors.ErrInvalidInput)
	}
	creds := &Credentials{Scheme: scheme, ID: id, Timestamp: ts, Nonce: nonce, Ext: ext}
	creds.MAC = ComputeMAC(r, creds, key, EndpointFromURL(r.URL))
	r.Header.Set("Authorization", FormatAuthorization(creds))
	return nil
}

// FormatAuthorization renders creds as an Authorization header value.
func FormatAuthorization(creds *Credentials) string {
	attrs := map[string]string{
		"id":    creds.ID,
		"ts":    strconv.FormatInt(creds.Timestamp, 10),
		"nonce": creds.Nonce,
		"mac":   creds.MAC,
	}
	if creds.Hash != "" {
		attrs["hash"] = creds.Hash
	}
	if creds.Ext != "" {
		attrs["ext"] = creds.Ext
	}

	order := []string{"id", "ts", "nonce", "hash", "ext", "mac"}
	parts := make([]string, 0, len(attrs))
	for _, key := range order {
		if value, ok := attrs[key]; ok {
			parts = append(parts, fmt.Sprintf(`%s="%s"`, key, value))
		}
	}
	return string(creds.Scheme) + " " + strings.Join(parts, ", ")
}

// SplitHostPort splits a Host header value, returning an empty port when none is given.
func SplitHostPort(hostport string) (string, string) {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return strings.Trim(hostport, "[]"), ""
	}
	return host, port
}
