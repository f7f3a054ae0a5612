package perception

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"lily/internal/logging"
)

// FallbackClient answers from a primary model and switches to a fallback
// model while the primary is cooling down after a failure.
type FallbackClient struct {
	primary  LLMClient
	fallback LLMClient
	cooldown time.Duration
	now      func() time.Time

	mu            sync.Mutex
	cooldownUntil time.Time
	onFallback    bool
}

// NewFallbackClient wraps primary with fallback. A nil fallback disables switching.
func NewFallbackClient(primary, fallback LLMClient, cooldown time.Duration) *FallbackClient {
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	return &FallbackClient{
		primary:  primary,
		fallback: fallback,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Model reports the model that would serve the next call.
func (c *FallbackClient) Model() string {
	if c.inCooldown() && c.fallback != nil {
		return modelOf(c.fallback)
	}
	return modelOf(c.primary)
}

// Complete sends a prompt and returns the completion.
func (c *FallbackClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem tries the primary unless it is cooling down, then the fallback.
func (c *FallbackClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", nil
	}

	var primaryErr error
	if c.fallback == nil || !c.inCooldown() {
		reply, err := c.primary.CompleteWithSystem(ctx, systemPrompt, userPrompt)
		if err == nil && strings.TrimSpace(reply) == "" {
			err = ErrEmptyReply
		}
		if err == nil {
			c.markPrimaryHealthy()
			return reply, nil
		}
		if c.fallback == nil || ctx.Err() != nil {
			return "", err
		}
		primaryErr = err
		wait := parseRetryAfter(err.Error(), c.cooldown)
		c.enterCooldown(wait)
		logging.PerceptionWarn("Primary model %s failed, cooling down for %v: %v", modelOf(c.primary), wait, err)
	}

	reply, err := c.fallback.CompleteWithSystem(ctx, systemPrompt, userPrompt)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = ErrEmptyReply
	}
	if err != nil {
		if primaryErr != nil {
			return "", fmt.Errorf("fallback model also failed: %w", errors.Join(primaryErr, err))
		}
		return "", fmt.Errorf("fallback model failed: %w", err)
	}
	return reply, nil
}

func (c *FallbackClient) inCooldown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.cooldownUntil)
}

func (c *FallbackClient) enterCooldown(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cooldownUntil = c.now().Add(d)
	if !c.onFallback {
		logging.Perception("Using fallback model %s", modelOf(c.fallback))
		c.onFallback = true
	}
}

func (c *FallbackClient) markPrimaryHealthy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.onFallback {
		logging.Perception("Primary model %s is back online", modelOf(c.primary))
		c.onFallback = false
	}
}

var retryAfterPattern = regexp.MustCompile(`(\d+)\s*seconds`)

// parseRetryAfter extracts "try again in N seconds" hints from provider errors.
func parseRetryAfter(msg string, def time.Duration) time.Duration {
	m := retryAfterPattern.FindStringSubmatch(strings.ToLower(msg))
	if m == nil {
		return def
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
