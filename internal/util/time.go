package util

import (
	"fmt"
	"sync"
	"time"
)

// TimeProvider supplies the wall clock used for fallback record timestamps,
// in a configurable timezone.
type TimeProvider struct {
	location *time.Location
	now      func() time.Time
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	mu                 sync.Mutex
)

// InitializeTimeProvider initializes the global time provider with the specified timezone
func InitializeTimeProvider(timezone string) error {
	mu.Lock()
	defer mu.Unlock()

	provider := &TimeProvider{}
	if err := provider.SetTimezone(timezone); err != nil {
		return err
	}

	globalTimeProvider = provider
	return nil
}

// GetTimeProvider returns the global time provider instance.
// If not initialized, it defaults to Local timezone.
func GetTimeProvider() *TimeProvider {
	mu.Lock()
	p := globalTimeProvider
	mu.Unlock()
	if p == nil {
		_ = InitializeTimeProvider("Local")
		mu.Lock()
		p = globalTimeProvider
		mu.Unlock()
	}
	return p
}

// NewFixedTimeProvider returns a provider whose clock always reads t. Used by tests.
func NewFixedTimeProvider(t time.Time) *TimeProvider {
	return &TimeProvider{
		location: t.Location(),
		now:      func() time.Time { return t },
	}
}

// SetTimezone updates the timezone for the time provider
func (tp *TimeProvider) SetTimezone(timezone string) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	loc := time.Local
	if timezone != "" && timezone != "Local" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, Asia/Tokyo, America/New_York, Europe/London", timezone, err)
		}
		loc = l
	}
	tp.location = loc
	return nil
}

// Now returns the current time in the configured timezone
func (tp *TimeProvider) Now() time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()

	now := time.Now
	if tp.now != nil {
		now = tp.now
	}
	if tp.location == nil {
		return now()
	}
	return now().In(tp.location)
}
