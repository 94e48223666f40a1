package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/snarg/speak2send/internal/convert"
	"github.com/snarg/speak2send/internal/ratelimit"
	"github.com/snarg/speak2send/internal/transcribe"
)

// Slack above the audio cap for the other multipart fields. Bodies past this
// are cut off by MaxBytesReader instead of buffered.
const maxRequestBytes = convert.MaxAudioBytes + 1<<20

// Converter runs one conversion for an identified caller.
// Implemented by convert.Pipeline.
type Converter interface {
	Run(ctx context.Context, identifier string, req *convert.Request) (*convert.Result, error)
}

// ConvertHandler exposes the conversion pipeline as POST /convert.
type ConvertHandler struct {
	converter Converter
	hasAPIKey bool
	log       zerolog.Logger
}

func NewConvertHandler(converter Converter, hasAPIKey bool, log zerolog.Logger) *ConvertHandler {
	return &ConvertHandler{
		converter: converter,
		hasAPIKey: hasAPIKey,
		log:       log.With().Str("handler", "convert").Logger(),
	}
}

// Routes registers the conversion endpoint.
func (h *ConvertHandler) Routes(r chi.Router) {
	r.Post("/convert", h.Convert)
}

// Convert handles POST /convert: a multipart form with an audio file and/or
// a transcript override plus the style fields.
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	// A missing credential short-circuits everything, before validation
	// and before any quota is consumed.
	if !h.hasAPIKey {
		WriteError(w, http.StatusInternalServerError, "OPENAI_API_KEY no esta configurada en el servidor.")
		return
	}

	req, err := h.parseRequest(w, r)
	if err != nil {
		return // parseRequest already wrote the response
	}

	result, err := h.converter.Run(r.Context(), ClientIdentifier(r), req)
	if err != nil {
		h.writeConvertError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// parseRequest reads the multipart form into a conversion request, applying
// the demo's defaults for the style fields. On failure it writes the error
// response itself and returns a non-nil error.
func (h *ConvertHandler) parseRequest(w http.ResponseWriter, r *http.Request) (*convert.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			WriteError(w, http.StatusRequestEntityTooLarge, "El archivo supera el limite de 20 MB.")
			return nil, err
		}
		WriteError(w, http.StatusBadRequest, "Necesitas grabar o subir un audio.")
		return nil, err
	}
	defer r.MultipartForm.RemoveAll()

	req := &convert.Request{
		TranscriptOverride: r.FormValue("transcript"),
		MessageType:        formValueDefault(r, "message_type", convert.DefaultMessageType),
		Tone:               formValueDefault(r, "tone", convert.DefaultTone),
		TargetLanguage:     formValueDefault(r, "target_language", convert.DefaultTargetLanguage),
		Adjustment:         r.FormValue("adjustment"),
	}

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			WriteError(w, http.StatusBadRequest, "Necesitas grabar o subir un audio.")
			return nil, readErr
		}
		req.Audio = &transcribe.Clip{
			Filename: header.Filename,
			MIMEType: header.Header.Get("Content-Type"),
			Data:     data,
		}
	}

	return req, nil
}

// writeConvertError maps the pipeline's typed errors onto the HTTP contract.
// Only the user-facing message leaves the process; details stay in the logs.
func (h *ConvertHandler) writeConvertError(w http.ResponseWriter, err error) {
	var verr *convert.ValidationError
	if errors.As(err, &verr) {
		status := http.StatusBadRequest
		if verr.Reason == convert.ReasonTooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		WriteError(w, status, verr.Message)
		return
	}

	var lerr *ratelimit.LimitError
	if errors.As(err, &lerr) {
		WriteError(w, http.StatusTooManyRequests, lerr.Message)
		return
	}

	var terr *convert.TranscriptionError
	if errors.As(err, &terr) {
		WriteError(w, http.StatusInternalServerError, "No se pudo transcribir el audio.")
		return
	}

	var gerr *convert.GenerationError
	if errors.As(err, &gerr) {
		if gerr.Malformed {
			WriteError(w, http.StatusInternalServerError, "Respuesta inesperada del modelo.")
		} else {
			WriteError(w, http.StatusInternalServerError, "No se pudo generar el mensaje.")
		}
		return
	}

	h.log.Error().Err(err).Msg("conversion failed")
	WriteError(w, http.StatusInternalServerError, "Error interno del servidor.")
}

func formValueDefault(r *http.Request, name, def string) string {
	if v := strings.TrimSpace(r.FormValue(name)); v != "" {
		return v
	}
	return def
}
