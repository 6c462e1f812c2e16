package observability

import (
	"regexp"
	"strings"
)

// Redactor masks credentials that may appear in backend messages or request URLs
// before they reach the logs.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
	name        string
}

// NewRedactor creates a new redactor with default patterns.
func NewRedactor() *Redactor {
	r := &Redactor{}
	r.addDefaultPatterns()
	return r
}

func (r *Redactor) addDefaultPatterns() {
	r.AddPattern(`Bearer\s+[a-zA-Z0-9\-_\.]+`, "Bearer [REDACTED]", "bearer_token")
	r.AddPattern(`Authorization:\s*[^\s]+`, "Authorization: [REDACTED]", "auth_header")

	// Credentials passed as query parameters, e.g. ?api_key=... or &token=...
	r.AddPattern(`(?i)([?&](?:api_key|apikey|token|access_token|secret|password)=)[^&\s#]+`, "${1}[REDACTED]", "query_secret")

	// user:password@ in URLs
	r.AddPattern(`(https?://)[^/\s:@]+:[^/\s@]+@`, "${1}[REDACTED]@", "url_userinfo")

	r.AddPattern(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, "[REDACTED_EMAIL]", "email")
}

// AddPattern adds a custom redaction pattern. Invalid patterns are ignored.
func (r *Redactor) AddPattern(pattern, replacement, name string) {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return
	}
	r.patterns = append(r.patterns, &redactPattern{
		regex:       regex,
		replacement: replacement,
		name:        name,
	})
}

// Redact applies all redaction patterns to the input string.
func (r *Redactor) Redact(input string) string {
	result := input
	for _, p := range r.patterns {
		result = p.regex.ReplaceAllString(result, p.replacement)
	}
	return result
}

// RedactHeaders redacts sensitive HTTP headers.
func (r *Redactor) RedactHeaders(headers map[string][]string) map[string][]string {
	sensitiveHeaders := map[string]bool{
		"authorization": true,
		"x-api-key":     true,
		"api-key":       true,
		"x-auth-token":  true,
		"cookie":        true,
		"set-cookie":    true,
	}

	result := make(map[string][]string, len(headers))
	for k, v := range headers {
		if sensitiveHeaders[strings.ToLower(k)] {
			result[k] = []string{"[REDACTED]"}
		} else {
			result[k] = v
		}
	}
	return result
}
