package convert

import (
	"path/filepath"
	"strings"

	"github.com/snarg/speak2send/internal/transcribe"
)

// MaxAudioBytes is the upload size cap (20 MiB).
const MaxAudioBytes = 20 * 1024 * 1024

// Formats the transcription backend accepts. A filename without an extension
// is tolerated; the backend works from the MIME type in that case.
var allowedExtensions = map[string]bool{
	"mp3":  true,
	"m4a":  true,
	"wav":  true,
	"webm": true,
	"ogg":  true,
}

// Defaults for the free-text style parameters, matching the public demo form.
const (
	DefaultMessageType    = "Email"
	DefaultTone           = "Profesional"
	DefaultTargetLanguage = "Ingles"
	DefaultFilename       = "audio.webm"
	DefaultMIMEType       = "audio/webm"
)

// Request is one conversion call. Audio and TranscriptOverride are each
// optional, but at least one must be usable.
type Request struct {
	Audio              *transcribe.Clip
	TranscriptOverride string

	MessageType    string
	Tone           string
	TargetLanguage string
	Adjustment     string
}

// Phrase is a before/after rewrite example in the target language.
type Phrase struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Result is the normalized output of one pipeline run.
type Result struct {
	ReadyMessage  string   `json:"ready_message"`
	Transcript    string   `json:"transcript"`
	Improvements  []string `json:"improvements"`
	BetterPhrases []Phrase `json:"better_phrases"`
}

// Validate checks that the request carries a usable audio payload or a
// transcript override, and fills the payload's filename/MIME defaults.
// Returns a *ValidationError describing the first rule broken.
func (r *Request) Validate() error {
	hasOverride := strings.TrimSpace(r.TranscriptOverride) != ""
	if r.Audio == nil && !hasOverride {
		return &ValidationError{
			Reason:  ReasonMissingInput,
			Message: "Necesitas grabar o subir un audio.",
		}
	}

	if r.Audio != nil {
		if len(r.Audio.Data) > MaxAudioBytes {
			return &ValidationError{
				Reason:  ReasonTooLarge,
				Message: "El archivo supera el limite de 20 MB.",
			}
		}

		ext := fileExtension(r.Audio.Filename)
		if ext != "" && !allowedExtensions[ext] {
			return &ValidationError{
				Reason:  ReasonUnsupportedFormat,
				Message: "Formato no soportado. Usa mp3, m4a, wav, webm u ogg.",
			}
		}

		if r.Audio.Filename == "" {
			r.Audio.Filename = DefaultFilename
		}
		if r.Audio.MIMEType == "" {
			r.Audio.MIMEType = DefaultMIMEType
		}
	}

	return nil
}

// fileExtension returns the lower-cased extension without the dot, or "".
func fileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
