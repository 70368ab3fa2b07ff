// Package timezone pins wall-clock reads and formatting to APP_TIMEZONE.
//
// The location is resolved from configuration on first use. Names must come from the
// IANA database ("UTC", "Europe/Oslo"); an unknown name falls back to UTC with an error log.
package timezone

import (
	"sync"
	"time"

	"lodge/config"

	"github.com/rs/zerolog/log"
)

var (
	mu       sync.RWMutex
	location *time.Location
)

func loadLocation(name string) *time.Location {
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Failed to load timezone, falling back to UTC")

		return time.UTC
	}

	log.Info().Str("timezone", loc.String()).Msg("Application timezone initialized")

	return loc
}

// Location returns the application timezone, resolving it on first call.
func Location() *time.Location {
	mu.RLock()
	loc := location
	mu.RUnlock()

	if loc != nil {
		return loc
	}

	mu.Lock()
	defer mu.Unlock()

	if location == nil {
		location = loadLocation(config.Get().App.Timezone)
	}

	return location
}

// SetLocation overrides the application timezone, e.g. in tests.
func SetLocation(loc *time.Location) {
	mu.Lock()
	defer mu.Unlock()

	location = loc
}

func Now() time.Time {
	return time.Now().In(Location())
}

func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, Location()) //nolint:wrapcheck
}

func Format(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}
