package utils

import (
	"net"
	"strings"
	"sync"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

// GeoResolver maps validator IPs to country names using a local MaxMind database.
// A nil resolver, or one without a database, resolves everything to "".
type GeoResolver struct {
	db    *geoip2.Reader
	cache sync.Map // ip -> country
}

// NewGeoResolver never fails: a missing or unreadable database leaves lookups disabled
func NewGeoResolver(dbPath string, logger *zap.Logger) *GeoResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dbPath == "" {
		return &GeoResolver{}
	}

	db, err := geoip2.Open(dbPath)
	if err != nil {
		logger.Warn("could not open GeoIP database, country lookup disabled",
			zap.String("path", dbPath), zap.Error(err))
		return &GeoResolver{}
	}
	return &GeoResolver{db: db}
}

func (g *GeoResolver) Close() {
	if g != nil && g.db != nil {
		g.db.Close()
	}
}

func (g *GeoResolver) Enabled() bool {
	return g != nil && g.db != nil
}

// Country returns the English country name for an "ip" or "ip:port" identifier
func (g *GeoResolver) Country(identifier string) string {
	if !g.Enabled() {
		return ""
	}

	host := hostOnly(identifier)
	if val, ok := g.cache.Load(host); ok {
		return val.(string)
	}

	var country string
	if ip := net.ParseIP(host); ip != nil {
		if record, err := g.db.Country(ip); err == nil {
			country = record.Country.Names["en"]
		}
	}

	g.cache.Store(host, country)
	return country
}

func hostOnly(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if host, _, err := net.SplitHostPort(identifier); err == nil {
		return host
	}
	return identifier
}
