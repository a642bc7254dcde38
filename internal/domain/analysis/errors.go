package analysis

import "errors"

// ErrProviderTimeout indicates the AI provider did not answer inside the hard
// deadline.
var ErrProviderTimeout = errors.New("ai provider timeout")

// ErrProviderMalformed indicates the provider answered but the payload could
// not be parsed into a result.
var ErrProviderMalformed = errors.New("ai provider returned malformed response")

// ErrQuotaExhausted indicates today's limit for a metered resource is spent.
// The analysis pipeline never surfaces this; the HTTP layer maps it to 429
// for endpoints that have no deterministic fallback.
var ErrQuotaExhausted = errors.New("daily quota exhausted")
