package signal

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// originChecker builds the upgrader's CheckOrigin from configured origins.
// "*" allows everything; requests without an Origin header are accepted.
func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		norm, ok := normalizeOrigin(o)
		if !ok {
			log.Warn().Str("module", "signal").Str("origin", o).Msg("ignoring invalid origin in configuration")
			continue
		}
		allowed[norm] = struct{}{}
	}
	return func(r *http.Request) bool {
		header := r.Header.Get("Origin")
		if header == "" {
			return true
		}
		norm, ok := normalizeOrigin(header)
		if !ok {
			return false
		}
		_, ok = allowed[norm]
		return ok
	}
}

func normalizeOrigin(origin string) (string, bool) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), true
}
