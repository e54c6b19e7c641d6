package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"book-my-session/core/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "jwt:\n  secret: s3cret\n"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, constants.BookingPolicyExclusive, cfg.Booking.Policy)
	assert.Equal(t, constants.AvailabilityViewFree, cfg.Booking.AvailabilityView)
	assert.Equal(t, "09:00", cfg.Slots.WindowStart)
	assert.Equal(t, "16:00", cfg.Slots.WindowEnd)
	assert.Equal(t, time.Hour, cfg.Slots.Duration)
	assert.Equal(t, "+05:30", cfg.Slots.DisplayOffset)

	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, cfg.Slots.DisplayLocation()).Zone()
	assert.Equal(t, 19800, offset)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
jwt:
  secret: s3cret
database:
  driver: sqlite
  path: /tmp/bms.db
booking:
  policy: shared
  availability_view: occupancy
slots:
  duration: 30m
  days: 3
`))
	require.NoError(t, err)

	assert.Equal(t, constants.DatabaseDriverSQLite, cfg.Database.Driver)
	assert.Equal(t, constants.BookingPolicyShared, cfg.Booking.Policy)
	assert.Equal(t, constants.AvailabilityViewOccupancy, cfg.Booking.AvailabilityView)
	assert.Equal(t, 30*time.Minute, cfg.Slots.Duration)
	assert.Equal(t, 3, cfg.Slots.Days)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 7070},
			Database: DatabaseConfig{Driver: constants.DatabaseDriverPostgres},
			JWT:      JWTConfig{Secret: "x"},
			Booking: BookingConfig{
				Policy:           constants.BookingPolicyExclusive,
				AvailabilityView: constants.AvailabilityViewFree,
			},
			Slots: SlotsConfig{
				WindowStart:   "09:00",
				WindowEnd:     "16:00",
				Duration:      time.Hour,
				DisplayOffset: "+05:30",
				Days:          1,
				Regeneration:  constants.RegenerationAppend,
			},
		}
	}

	base := valid()
	require.NoError(t, base.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"unknown policy", func(c *Config) { c.Booking.Policy = "first-come" }},
		{"unknown view", func(c *Config) { c.Booking.AvailabilityView = "all" }},
		{"zero duration", func(c *Config) { c.Slots.Duration = 0 }},
		{"bad offset", func(c *Config) { c.Slots.DisplayOffset = "IST" }},
		{"bad window", func(c *Config) { c.Slots.WindowEnd = "4pm" }},
		{"bad start date", func(c *Config) { c.Slots.StartDate = "05/12/2024" }},
		{"unknown regeneration", func(c *Config) { c.Slots.Regeneration = "replace" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
