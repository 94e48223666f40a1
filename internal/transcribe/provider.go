package transcribe

import "context"

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, clip Clip, language string) (string, error)
	Name() string
}

// Clip is an in-memory audio payload. Filename and MIMEType tell the backend
// what format the bytes are in; both are always set by the validator.
type Clip struct {
	Filename string
	MIMEType string
	Data     []byte
}
