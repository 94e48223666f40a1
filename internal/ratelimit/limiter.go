package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// Scope identifies which daily quota was exhausted.
type Scope string

const (
	ScopePerClient Scope = "per_client"
	ScopeGlobal    Scope = "global"
)

// LimitError is returned by Allow when a quota is exhausted. Message is the
// user-facing text for the HTTP response.
type LimitError struct {
	Scope   Scope
	Message string
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limit (%s): %s", e.Scope, e.Message)
}

// Limiter enforces the per-identifier and global daily quotas against a
// shared counter store.
type Limiter struct {
	store          Store
	perClientLimit int
	globalLimit    int
	now            func() time.Time
	log            zerolog.Logger
}

func NewLimiter(store Store, perClientLimit, globalLimit int, log zerolog.Logger) *Limiter {
	return &Limiter{
		store:          store,
		perClientLimit: perClientLimit,
		globalLimit:    globalLimit,
		now:            time.Now,
		log:            log,
	}
}

// Allow admits or denies one request from identifier. On admit it increments
// both counters and persists them in the same atomic update; on deny nothing
// is written. Counters reset lazily when the stored date is not today (UTC).
func (l *Limiter) Allow(ctx context.Context, identifier string) error {
	today := l.now().UTC().Format(dateLayout)

	err := l.store.Update(ctx, func(c *Counts) error {
		if c.Date != today {
			c.Date = today
			c.Global = 0
			c.PerClient = nil
		}
		if c.PerClient == nil {
			c.PerClient = make(map[string]int)
		}

		// Per-identifier quota is evaluated before the global one, so a
		// caller who used up their own slots sees the personal message
		// even while global capacity remains.
		if c.PerClient[identifier] >= l.perClientLimit {
			return &LimitError{
				Scope:   ScopePerClient,
				Message: fmt.Sprintf("Llegaste al limite diario (%d). Intenta manana.", l.perClientLimit),
			}
		}
		if c.Global >= l.globalLimit {
			return &LimitError{
				Scope:   ScopeGlobal,
				Message: fmt.Sprintf("El demo llego al limite global de hoy (%d). Intenta mas tarde.", l.globalLimit),
			}
		}

		c.PerClient[identifier]++
		c.Global++
		return nil
	})

	if err != nil {
		if lerr, ok := err.(*LimitError); ok {
			l.log.Info().
				Str("identifier", identifier).
				Str("scope", string(lerr.Scope)).
				Msg("request denied by daily quota")
		}
		return err
	}
	return nil
}
