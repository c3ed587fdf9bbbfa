package model

// AppSettings holds the user-supplied third-party credentials that are
// forwarded to the extraction service. Empty fields mean "unset".
type AppSettings struct {
	AnthropicAPIKey  string `json:"anthropicApiKey"`
	AnthropicBaseURL string `json:"anthropicBaseUrl"`
}

// HasAPIKey reports whether an API key is configured.
func (s AppSettings) HasAPIKey() bool {
	return s.AnthropicAPIKey != ""
}

// MaskedAPIKey returns the key with all but the last four characters hidden.
func (s AppSettings) MaskedAPIKey() string {
	key := s.AnthropicAPIKey
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
