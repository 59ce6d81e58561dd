package services

import (
	"context"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"linkmanager/internal/config"

	"github.com/oschwald/geoip2-golang"
)

// GeoIPService resolves visitor IPs to country/region/city for the
// access log. The database file is optional; without it every lookup
// answers "Unknown". The file is re-opened daily so an externally
// refreshed database is picked up without a restart.
type GeoIPService struct {
	cfg       config.Config
	logger    *slog.Logger
	geoReader *geoip2.Reader
	geoLock   sync.RWMutex
}

func NewGeoIPService(cfg config.Config, logger *slog.Logger) *GeoIPService {
	return &GeoIPService{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *GeoIPService) Init() {
	if s.cfg.GeoIPDBPath == "" {
		s.logger.Warn("GeoIP: no database path configured, lookups disabled")
		return
	}
	if _, err := os.Stat(s.cfg.GeoIPDBPath); err != nil {
		s.logger.Warn("GeoIP: database file not found, lookups disabled", "path", s.cfg.GeoIPDBPath)
		return
	}
	s.reloadReader(s.cfg.GeoIPDBPath)
}

func (s *GeoIPService) StartUpdater(ctx context.Context) {
	if s.cfg.GeoIPDBPath == "" {
		return
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.logger.Info("GeoIP: reloading database")
			s.reloadReader(s.cfg.GeoIPDBPath)
		case <-ctx.Done():
			s.logger.Info("GeoIP: updater stopping")
			return
		}
	}
}

func (s *GeoIPService) reloadReader(path string) {
	reader, err := geoip2.Open(path)
	if err != nil {
		s.logger.Error("GeoIP: failed to open database", "path", path, "error", err)
		return
	}

	s.geoLock.Lock()
	defer s.geoLock.Unlock()

	if s.geoReader != nil {
		s.geoReader.Close()
	}
	s.geoReader = reader

	meta := reader.Metadata()
	s.logger.Info("GeoIP: loaded database", "epoch", meta.BuildEpoch)
}

func (s *GeoIPService) Close() {
	s.geoLock.Lock()
	defer s.geoLock.Unlock()
	if s.geoReader != nil {
		s.geoReader.Close()
		s.geoReader = nil
	}
}

func (s *GeoIPService) GetLocation(ipStr string) (country, region, city string) {
	if ipStr == "127.0.0.1" || ipStr == "::1" {
		return "Localhost", "Local", "Local"
	}

	s.geoLock.RLock()
	reader := s.geoReader
	s.geoLock.RUnlock()

	if reader == nil {
		return "Unknown", "", ""
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return "Invalid IP", "", ""
	}

	record, err := reader.City(ip)
	if err != nil {
		s.logger.Error("GeoIP: lookup error", "ip", ipStr, "error", err)
		return "Error", "", ""
	}

	if name, ok := record.Country.Names["en"]; ok {
		country = name
	} else {
		country = record.Country.IsoCode
	}
	if country == "" {
		country = "Unknown"
	}

	if len(record.Subdivisions) > 0 {
		if name, ok := record.Subdivisions[0].Names["en"]; ok {
			region = name
		}
	}
	if name, ok := record.City.Names["en"]; ok {
		city = name
	}

	return country, region, city
}
