package llm

import "errors"

var (
	// ErrMissingCredential indicates no API key is configured for the provider.
	ErrMissingCredential = errors.New("missing provider api key")

	// ErrProviderAuth indicates the provider rejected the API key.
	ErrProviderAuth = errors.New("provider authentication failed")

	// ErrProviderRequest covers network failures, timeouts, non-2xx responses
	// and completions without any text.
	ErrProviderRequest = errors.New("provider request failed")
)
