package services

import (
	"testing"

	"linkmanager/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestGeoIPWithoutDatabase(t *testing.T) {
	service := NewGeoIPService(config.Config{}, testLogger())
	service.Init()
	defer service.Close()

	t.Run("loopback addresses short-circuit", func(t *testing.T) {
		country, region, city := service.GetLocation("127.0.0.1")
		assert.Equal(t, "Localhost", country)
		assert.Equal(t, "Local", region)
		assert.Equal(t, "Local", city)

		country, _, _ = service.GetLocation("::1")
		assert.Equal(t, "Localhost", country)
	})

	t.Run("lookups answer Unknown", func(t *testing.T) {
		country, region, city := service.GetLocation("8.8.8.8")
		assert.Equal(t, "Unknown", country)
		assert.Empty(t, region)
		assert.Empty(t, city)
	})
}

func TestGeoIPMissingFile(t *testing.T) {
	service := NewGeoIPService(config.Config{GeoIPDBPath: "/nonexistent/GeoLite2-City.mmdb"}, testLogger())
	service.Init()
	defer service.Close()

	country, _, _ := service.GetLocation("8.8.8.8")
	assert.Equal(t, "Unknown", country)
}
