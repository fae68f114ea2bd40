package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"
)

const (
	fingerprintVersion = "v1:"
	// fingerprintTotalLen is 3 bytes of version prefix plus the hex encoded SHA-256 digest.
	fingerprintTotalLen = len(fingerprintVersion) + sha256.Size*2
)

// Generate creates a client fingerprint from request headers.
// Returns a version-prefixed fingerprint string in format: "v1:hash"
//
// By default only the User-Agent header is used. A missing User-Agent
// is hashed as the empty string, so every request gets a fingerprint:
//
//	fp := fingerprint.Generate(r.Header)
//	fp := fingerprint.Generate(r.Header, fingerprint.WithAcceptHeaders())
func Generate(h http.Header, opts ...Option) string {
	o := applyOptions(opts...)

	var components []string

	if o.includeUserAgent {
		components = append(components, h.Get("User-Agent"))
	}

	if o.includeAcceptHeaders {
		components = append(components,
			h.Get("Accept-Language"),
			h.Get("Accept-Encoding"),
			h.Get("Accept"),
		)
	}

	if o.includeHeaderSet {
		components = append(components, headerSet(h))
	}

	// Empty values come from missing headers; dropping them keeps hashing stable.
	filtered := make([]string, 0, len(components))
	for _, comp := range components {
		if comp != "" {
			filtered = append(filtered, comp)
		}
	}

	// Pipe delimiter keeps ["ab", "c"] and ["a", "bc"] apart.
	combined := strings.Join(filtered, "|")
	hash := sha256.Sum256([]byte(combined))

	return fingerprintVersion + hex.EncodeToString(hash[:])
}

// UserAgent returns the fingerprint of a bare User-Agent value.
// The result equals Generate called with default options on a header set carrying only that value.
func UserAgent(ua string) string {
	h := make(http.Header, 1)
	if ua != "" {
		h.Set("User-Agent", ua)
	}
	return Generate(h)
}

// Validate compares the fingerprint of the given headers with a stored fingerprint.
// Returns nil if fingerprints match, ErrMismatch if they don't
// and ErrInvalidFingerprint if the stored value is malformed.
//
// Use the same options that were used to generate the stored fingerprint.
func Validate(h http.Header, stored string, opts ...Option) error {
	if !strings.HasPrefix(stored, fingerprintVersion) || len(stored) != fingerprintTotalLen {
		return ErrInvalidFingerprint
	}

	if Generate(h, opts...) == stored {
		return nil
	}

	return ErrMismatch
}

// headerSet fingerprints the presence of common browser headers, not their values.
// Different browsers and HTTP clients send different sets of headers.
func headerSet(h http.Header) string {
	var headerNames []string
	for name := range h {
		switch strings.ToLower(name) {
		case "user-agent", "accept", "accept-language", "accept-encoding",
			"connection", "upgrade-insecure-requests", "sec-fetch-dest",
			"sec-fetch-mode", "sec-fetch-site", "cache-control":
			headerNames = append(headerNames, strings.ToLower(name))
		}
	}

	sort.Strings(headerNames)
	return strings.Join(headerNames, ",")
}
