package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTimeProvider(t *testing.T) {
	mu.Lock()
	globalTimeProvider = nil
	mu.Unlock()

	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "local timezone", timezone: "Local"},
		{name: "UTC timezone", timezone: "UTC"},
		{name: "valid timezone Asia/Tokyo", timezone: "Asia/Tokyo"},
		{name: "empty timezone defaults to Local", timezone: ""},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitializeTimeProvider(tt.timezone)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid timezone")
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, globalTimeProvider)
			}
		})
	}
}

func TestGetTimeProvider(t *testing.T) {
	mu.Lock()
	globalTimeProvider = nil
	mu.Unlock()

	provider := GetTimeProvider()
	assert.NotNil(t, provider)
	assert.Same(t, provider, GetTimeProvider())
}

func TestTimeProvider_NowUsesLocation(t *testing.T) {
	provider := &TimeProvider{}
	require.NoError(t, provider.SetTimezone("UTC"))

	before := time.Now().UTC()
	now := provider.Now()
	after := time.Now().UTC()

	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
	assert.Equal(t, "UTC", now.Location().String())
}

func TestTimeProvider_NowFixed(t *testing.T) {
	fixed := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	provider := NewFixedTimeProvider(fixed)

	assert.True(t, fixed.Equal(provider.Now()))
	assert.True(t, fixed.Equal(provider.Now()))
}
