package convert

import "fmt"

// ValidationReason says which input rule a request broke.
type ValidationReason string

const (
	ReasonMissingInput      ValidationReason = "missing_input"
	ReasonTooLarge          ValidationReason = "too_large"
	ReasonUnsupportedFormat ValidationReason = "unsupported_format"
)

// ValidationError is a request rejected before any external call. Message is
// the user-facing text for the HTTP response.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation (%s): %s", e.Reason, e.Message)
}

// TranscriptionError wraps a failed or empty speech-to-text result.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	if e.Err != nil {
		return "transcription failed: " + e.Err.Error()
	}
	return "transcription produced no text"
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// GenerationError wraps a failed generation call or a model response the
// normalizer could not make sense of.
type GenerationError struct {
	Malformed bool
	Err       error
}

func (e *GenerationError) Error() string {
	if e.Malformed {
		return "malformed model response"
	}
	if e.Err != nil {
		return "generation failed: " + e.Err.Error()
	}
	return "generation failed"
}

func (e *GenerationError) Unwrap() error { return e.Err }
