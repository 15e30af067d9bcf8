package security

import (
	"net/http"
	"strings"
)

// BotDetector matches requester user agents against a fixed table of
// social-platform link-preview crawler signatures. Matching is a
// case-insensitive substring check, so "Twitterbot/1.0" matches "twitterbot".
type BotDetector struct {
	signatures []string
}

// NewBotDetector builds a detector from a signature table. Signatures are
// normalized to lowercase once at construction.
func NewBotDetector(signatures []string) *BotDetector {
	normalized := make([]string, 0, len(signatures))
	for _, sig := range signatures {
		sig = strings.TrimSpace(strings.ToLower(sig))
		if sig != "" {
			normalized = append(normalized, sig)
		}
	}
	return &BotDetector{signatures: normalized}
}

// IsBot reports whether the user agent belongs to a known preview crawler,
// along with the signature that matched.
func (bd *BotDetector) IsBot(userAgent string) (bool, string) {
	userAgentLower := strings.ToLower(userAgent)

	for _, sig := range bd.signatures {
		if strings.Contains(userAgentLower, sig) {
			return true, sig
		}
	}

	return false, ""
}

// ClientIP extracts the requester's IP, preferring proxy headers.
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for proxies/load balancers)
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		// Take the first IP if there are multiple
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	ip := r.RemoteAddr
	// Remove port if present
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}

	return ip
}
