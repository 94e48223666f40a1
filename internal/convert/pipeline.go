package convert

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/speak2send/internal/generate"
	"github.com/snarg/speak2send/internal/metrics"
	"github.com/snarg/speak2send/internal/ratelimit"
	"github.com/snarg/speak2send/internal/transcribe"
)

// Admitter decides whether one more request from an identifier fits in
// today's quota. Implemented by ratelimit.Limiter.
type Admitter interface {
	Allow(ctx context.Context, identifier string) error
}

// Pipeline runs one conversion end to end: validate, rate-limit, transcribe
// (unless an override is supplied), generate, normalize. Stages run strictly
// in order; the first failure terminates the run and nothing is retried.
type Pipeline struct {
	limiter        Admitter
	transcriber    transcribe.Provider
	generator      generate.Generator
	sourceLanguage string
	log            zerolog.Logger
}

func NewPipeline(limiter Admitter, transcriber transcribe.Provider, generator generate.Generator, sourceLanguage string, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		limiter:        limiter,
		transcriber:    transcriber,
		generator:      generator,
		sourceLanguage: sourceLanguage,
		log:            log,
	}
}

// Run produces a complete Result or a typed error; there is no partial
// success. A transcript obtained before a later failure is discarded (the
// caller can resubmit it as an override to skip re-transcribing).
func (p *Pipeline) Run(ctx context.Context, identifier string, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		metrics.ConversionsTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	if err := p.limiter.Allow(ctx, identifier); err != nil {
		var lerr *ratelimit.LimitError
		if errors.As(err, &lerr) {
			metrics.ConversionsTotal.WithLabelValues("rate_limited").Inc()
			metrics.RateLimitDenialsTotal.WithLabelValues(string(lerr.Scope)).Inc()
		}
		return nil, err
	}

	transcript := strings.TrimSpace(req.TranscriptOverride)
	if transcript == "" && req.Audio != nil {
		start := time.Now()
		text, err := p.transcriber.Transcribe(ctx, *req.Audio, p.sourceLanguage)
		metrics.UpstreamDuration.WithLabelValues("transcription").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ConversionsTotal.WithLabelValues("transcription_error").Inc()
			p.log.Error().Err(err).Str("provider", p.transcriber.Name()).Msg("transcription failed")
			return nil, &TranscriptionError{Err: err}
		}
		transcript = strings.TrimSpace(text)
	}
	if transcript == "" {
		metrics.ConversionsTotal.WithLabelValues("transcription_error").Inc()
		return nil, &TranscriptionError{}
	}

	start := time.Now()
	raw, err := p.generator.Generate(ctx, generate.Params{
		Transcript:  transcript,
		MessageType: req.MessageType,
		Tone:        req.Tone,
		TargetLang:  req.TargetLanguage,
		Adjustment:  req.Adjustment,
	})
	metrics.UpstreamDuration.WithLabelValues("generation").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ConversionsTotal.WithLabelValues("generation_error").Inc()
		p.log.Error().Err(err).Msg("generation failed")
		return nil, &GenerationError{Err: err}
	}

	result, err := Normalize(raw, transcript)
	if err != nil {
		metrics.ConversionsTotal.WithLabelValues("generation_error").Inc()
		p.log.Error().Err(err).Msg("model returned an unusable response")
		return nil, err
	}

	metrics.ConversionsTotal.WithLabelValues("success").Inc()
	return result, nil
}
