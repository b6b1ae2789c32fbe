// Package secrets masks sensitive values before run output leaves the
// process.
package secrets

import (
	"sort"
	"strings"
)

// Replacement is written in place of every masked value.
const Replacement = "***"

// minSecretLength keeps short values such as "1" or "yes" from blanking
// out unrelated text.
const minSecretLength = 4

// Masker replaces known secret values in strings and decoded JSON trees.
// Values are registered directly or harvested from environment variables
// whose names look like credentials.
type Masker struct {
	// suffixes mark an environment variable name as a secret (e.g. _TOKEN)
	suffixes []string

	secrets map[string]struct{}
}

// NewMasker creates a masker with the default name suffixes.
func NewMasker() *Masker {
	return &Masker{
		suffixes: []string{
			"_TOKEN",
			"_SECRET",
			"_KEY",
			"_PASSWORD",
			"_PASS",
			"_PWD",
		},
		secrets: make(map[string]struct{}),
	}
}

// AddSecret registers a value to be masked. Values shorter than four
// characters are ignored.
func (m *Masker) AddSecret(value string) {
	if len(value) >= minSecretLength {
		m.secrets[value] = struct{}{}
	}
}

// AddSecretsFromEnv registers the values of variables whose names look
// like credentials.
func (m *Masker) AddSecretsFromEnv(env map[string]string) {
	for key, value := range env {
		if m.IsSecretKey(key) {
			m.AddSecret(value)
		}
	}
}

// IsSecretKey reports whether an environment variable name looks like a
// credential.
func (m *Masker) IsSecretKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, suffix := range m.suffixes {
		if strings.HasSuffix(upper, suffix) || upper == strings.TrimPrefix(suffix, "_") {
			return true
		}
	}
	return false
}

// Len returns the number of registered secrets.
func (m *Masker) Len() int {
	return len(m.secrets)
}

// Mask replaces every registered secret in s. Longer secrets are replaced
// first so a secret containing another is masked whole.
func (m *Masker) Mask(s string) string {
	if len(m.secrets) == 0 || s == "" {
		return s
	}
	for _, secret := range m.ordered() {
		if strings.Contains(s, secret) {
			s = strings.ReplaceAll(s, secret, Replacement)
		}
	}
	return s
}

// MaskValue returns a copy of v with secrets masked in every string it
// contains. Maps and slices are copied; other scalars are returned as is.
func (m *Masker) MaskValue(v any) any {
	if len(m.secrets) == 0 {
		return v
	}
	switch val := v.(type) {
	case string:
		return m.Mask(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = m.MaskValue(item)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, item := range val {
			out[k] = m.Mask(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = m.MaskValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		for i, item := range val {
			out[i] = m.Mask(item)
		}
		return out
	default:
		return v
	}
}

// MaskMap is MaskValue for a map.
func (m *Masker) MaskMap(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	return m.MaskValue(data).(map[string]any)
}

func (m *Masker) ordered() []string {
	list := make([]string, 0, len(m.secrets))
	for s := range m.secrets {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if len(list[i]) != len(list[j]) {
			return len(list[i]) > len(list[j])
		}
		return list[i] < list[j]
	})
	return list
}
