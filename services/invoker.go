package services

import (
	"context"
	"errors"
	"log"
	"time"
)

// InvokerConfig bounds a single inference invocation.
type InvokerConfig struct {
	MaxRetries int           // total attempts
	Timeout    time.Duration // per attempt
	BaseDelay  time.Duration // first backoff, doubles each retry
	MaxDelay   time.Duration // backoff cap
}

// DefaultInvokerConfig returns the defaults used when a field is unset.
func DefaultInvokerConfig() InvokerConfig {
	return InvokerConfig{
		MaxRetries: 3,
		Timeout:    60 * time.Second,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   8 * time.Second,
	}
}

func (c InvokerConfig) withDefaults() InvokerConfig {
	def := DefaultInvokerConfig()
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = def.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	return c
}

// InvokeResult is the outcome of one resilient invocation. Degraded marks the
// caller-supplied fallback returned after the retry budget was exhausted.
type InvokeResult struct {
	Fields   ParsedResult
	Degraded bool
	Attempts int
	Err      error // last error when degraded
}

// Invoker wraps calls to the inference service with timeout, retry with
// exponential backoff, response validation, and a final fallback. Transport
// failures and validation failures share the same retry budget: a malformed
// payload may well come back well-formed on the next attempt.
type Invoker struct {
	gen TextGenerator
	cfg InvokerConfig
}

func NewInvoker(gen TextGenerator, cfg InvokerConfig) *Invoker {
	return &Invoker{gen: gen, cfg: cfg.withDefaults()}
}

// Invoke runs the prompt against the service and validates the response. It
// never returns an error for ordinary service failure: when the budget is
// exhausted it returns fallback marked degraded, so the orchestrator can
// always assemble a complete report.
func (iv *Invoker) Invoke(ctx context.Context, prompt string, schema Schema, fallback ParsedResult) InvokeResult {
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= iv.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		attempts = attempt

		callCtx, cancel := context.WithTimeout(ctx, iv.cfg.Timeout)
		raw, err := iv.gen.GenerateText(callCtx, prompt)
		cancel()

		if err == nil {
			fields, verr := Validate(raw, schema)
			if verr == nil {
				return InvokeResult{Fields: fields, Attempts: attempt}
			}
			err = verr
		}

		lastErr = err
		if errors.Is(err, ErrBadRequest) {
			break
		}
		if attempt < iv.cfg.MaxRetries {
			if werr := iv.wait(ctx, attempt); werr != nil {
				lastErr = werr
				break
			}
		}
	}

	log.Printf("invoker: returning fallback after %d attempt(s): %v", attempts, lastErr)
	return InvokeResult{Fields: fallback, Degraded: true, Attempts: attempts, Err: lastErr}
}

// backoffDelay is a pure function of the attempt number: base doubled per
// retry, capped at MaxDelay.
func (iv *Invoker) backoffDelay(attempt int) time.Duration {
	if attempt > 16 {
		attempt = 16
	}
	d := iv.cfg.BaseDelay << uint(attempt-1)
	if d > iv.cfg.MaxDelay || d <= 0 {
		d = iv.cfg.MaxDelay
	}
	return d
}

func (iv *Invoker) wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(iv.backoffDelay(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
