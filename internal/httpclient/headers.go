package httpclient

import (
	"fmt"
	"net/http"
	"strings"
)

// ParseHeaders validates and canonicalizes configured request headers.
// Keys must be non-empty and neither keys nor values may contain CR or LF.
func ParseHeaders(raw map[string]string) (http.Header, error) {
	headers := make(http.Header, len(raw))
	for key, value := range raw {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" || strings.ContainsAny(trimmedKey, "\r\n: ") {
			return nil, fmt.Errorf("invalid header key %q", key)
		}
		canonicalKey := http.CanonicalHeaderKey(trimmedKey)
		if strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("invalid header value for %s", canonicalKey)
		}
		headers.Set(canonicalKey, value)
	}
	return headers, nil
}
