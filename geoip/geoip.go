// Package geoip resolves client IPs to coarse geography. The resolver is
// constructed once at startup and handed to the components that need it;
// a missing database file just means every lookup comes back empty.
package geoip

import (
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// Resolver maps an IP to a best-effort (country, city) pair. Both values
// are nil for private ranges, unresolvable addresses, or a disabled
// resolver. Resolution never returns an error to callers: view recording
// must not fail because enrichment did.
type Resolver interface {
	Resolve(ip string) (country, city *string)
	Close() error
}

// Open returns a MaxMind-backed resolver, or a disabled one when no
// database path is configured.
func Open(dbPath string) (Resolver, error) {
	if dbPath == "" {
		return Disabled{}, nil
	}
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &maxmindResolver{reader: reader}, nil
}

type maxmindResolver struct {
	reader *geoip2.Reader
}

func (r *maxmindResolver) Resolve(ip string) (*string, *string) {
	if IsPrivate(ip) {
		return nil, nil
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, nil
	}

	record, err := r.reader.City(parsed)
	if err != nil || record == nil {
		return nil, nil
	}

	var country, city *string
	if code := record.Country.IsoCode; code != "" {
		country = &code
	}
	if name := record.City.Names["en"]; name != "" {
		city = &name
	}
	return country, city
}

func (r *maxmindResolver) Close() error {
	return r.reader.Close()
}

// Disabled is the resolver used when no GeoIP database is configured.
type Disabled struct{}

func (Disabled) Resolve(string) (*string, *string) { return nil, nil }
func (Disabled) Close() error                      { return nil }

// IsPrivate reports whether the address is loopback or in a private
// range. The 172. check deliberately covers the whole /8, matching the
// recording contract: such addresses always resolve to null geography.
func IsPrivate(ip string) bool {
	if ip == "" || ip == "::1" || ip == "127.0.0.1" {
		return true
	}
	return strings.HasPrefix(ip, "192.168.") ||
		strings.HasPrefix(ip, "10.") ||
		strings.HasPrefix(ip, "172.")
}
