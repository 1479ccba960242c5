package quiz

import "errors"

// Error kinds returned by the generator and verifier. Causes are joined with the
// kind, so both errors.Is(err, ErrStorage) and errors.Is(err, cause) hold.
var (
	ErrValidation         = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrQuotaExceeded      = errors.New("upstream quota exceeded")
	ErrUpstream           = errors.New("upstream generation failed")
	ErrMalformedResponse  = errors.New("malformed upstream response")
	ErrStorage            = errors.New("storage failed")
	ErrScoring            = errors.New("scoring failed")
)
