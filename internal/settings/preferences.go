// Package settings stores user preferences in the key-value port.
package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hustleledger/internal/cache"
	"hustleledger/internal/log"
	"hustleledger/internal/ports"
)

const (
	KeyBudgetNotifications    = "settings/budgetNotificationsEnabled"
	KeyRecurringNotifications = "settings/recurringNotifications"
)

// ParseBool interprets a stored flag. Unrecognized or empty values yield def.
func ParseBool(value string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Preferences reads and writes notification toggles. Reads are cached for
// the configured TTL and writes invalidate the cache.
type Preferences struct {
	kv     ports.KV
	cache  *cache.LRUCache[bool]
	logger *log.Logger
}

func NewPreferences(kv ports.KV, ttl time.Duration, logger *log.Logger) *Preferences {
	if logger == nil {
		logger = log.Discard()
	}
	return &Preferences{
		kv:     kv,
		cache:  cache.NewLRUCache[bool](8, ttl),
		logger: logger.WithComponent(log.ComponentSettings),
	}
}

// Cache exposes the read cache so it can be registered with a cache.Manager.
func (p *Preferences) Cache() cache.Cleaner {
	return p.cache
}

// BudgetNotificationsEnabled defaults to true when unset. On a read failure
// it returns the default together with the error.
func (p *Preferences) BudgetNotificationsEnabled(ctx context.Context) (bool, error) {
	return p.flag(ctx, KeyBudgetNotifications, true)
}

func (p *Preferences) SetBudgetNotificationsEnabled(ctx context.Context, enabled bool) error {
	return p.setFlag(ctx, KeyBudgetNotifications, enabled)
}

// ResetBudgetNotifications restores def: true removes the stored value,
// false stores an explicit "false".
func (p *Preferences) ResetBudgetNotifications(ctx context.Context, def bool) error {
	defer p.cache.Delete(KeyBudgetNotifications)
	if def {
		if err := p.kv.Delete(ctx, KeyBudgetNotifications); err != nil {
			return fmt.Errorf("reset budget notification preference: %w", err)
		}
		return nil
	}
	return p.setFlag(ctx, KeyBudgetNotifications, false)
}

func (p *Preferences) RecurringNotificationsEnabled(ctx context.Context) (bool, error) {
	return p.flag(ctx, KeyRecurringNotifications, true)
}

func (p *Preferences) SetRecurringNotificationsEnabled(ctx context.Context, enabled bool) error {
	return p.setFlag(ctx, KeyRecurringNotifications, enabled)
}

func (p *Preferences) flag(ctx context.Context, key string, def bool) (bool, error) {
	if v, ok := p.cache.Get(key); ok {
		return v, nil
	}
	raw, ok, err := p.kv.Get(ctx, key)
	if err != nil {
		p.logger.WarnContext(ctx, "Failed to read preference", "key", key, log.FieldError, err)
		return def, fmt.Errorf("read %s: %w", key, err)
	}
	v := def
	if ok {
		v = ParseBool(raw, def)
	}
	p.cache.Set(key, v)
	return v, nil
}

func (p *Preferences) setFlag(ctx context.Context, key string, v bool) error {
	p.cache.Delete(key)
	if err := p.kv.Set(ctx, key, formatBool(v)); err != nil {
		p.logger.WarnContext(ctx, "Failed to persist preference", "key", key, log.FieldError, err)
		return fmt.Errorf("write %s: %w", key, err)
	}
	p.logger.InfoContext(ctx, "Preference updated", "key", key, "value", v)
	return nil
}
