package httpclient

import (
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveParams are query parameter name fragments whose values are
// redacted, matched case-insensitively. Step URLs often carry credentials
// interpolated from env, e.g. "?access_token={{env.GITHUB_TOKEN}}".
var sensitiveParams = []string{
	"api_key",
	"apikey",
	"token",
	"password",
	"auth",
	"secret",
	"key",
	"credential",
	"signature",
	"session",
}

// SanitizeURL renders u for logs, spans and error messages. Sensitive query
// values are redacted. Userinfo is redacted too: a password is replaced, and
// a lone username is replaced as well since token-as-username URLs
// ("https://TOKEN@host/") are common.
func SanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	safe := *u
	if safe.User != nil {
		if _, hasPassword := safe.User.Password(); hasPassword {
			safe.User = url.UserPassword(safe.User.Username(), "REDACTED")
		} else if safe.User.Username() != "" {
			safe.User = url.User("REDACTED")
		}
	}

	if safe.RawQuery == "" {
		return safe.String()
	}

	q := safe.Query()
	for param := range q {
		if isSensitiveParam(param) {
			q.Set(param, redacted)
		}
	}
	safe.RawQuery = q.Encode()
	return safe.String()
}

func isSensitiveParam(param string) bool {
	lower := strings.ToLower(param)
	for _, sensitive := range sensitiveParams {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}
