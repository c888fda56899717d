package collaborator

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// GeoRange maps a CIDR block to a location.
type GeoRange struct {
	CIDR     string
	Location fraud.GeoLocation
}

// DefaultRanges is a small documentation-prefix table for development and
// tests. Production deployments load a real geo dataset instead.
func DefaultRanges() []GeoRange {
	return []GeoRange{
		{CIDR: "192.0.2.0/24", Location: fraud.GeoLocation{
			Country: "US", Region: "NY", City: "New York",
			Latitude: 40.7128, Longitude: -74.0060, Timezone: "America/New_York",
		}},
		{CIDR: "198.51.100.0/24", Location: fraud.GeoLocation{
			Country: "GB", Region: "ENG", City: "London",
			Latitude: 51.5074, Longitude: -0.1278, Timezone: "Europe/London",
		}},
		{CIDR: "203.0.113.0/24", Location: fraud.GeoLocation{
			Country: "DE", Region: "BE", City: "Berlin",
			Latitude: 52.5200, Longitude: 13.4050, Timezone: "Europe/Berlin",
		}},
	}
}

// DefaultVPNRanges lists CIDR blocks treated as anonymizing exits in the
// default table.
func DefaultVPNRanges() []string {
	return []string{"203.0.113.128/25"}
}

// StaticGeoResolver resolves IPs against a fixed CIDR table and keeps
// per-user location history in memory. Production deployments swap in a
// commercial geo database behind the same interface.
type StaticGeoResolver struct {
	ranges    []compiledRange
	vpnRanges []netip.Prefix
	highRisk  map[string]bool

	mu      sync.RWMutex
	history map[uuid.UUID][]fraud.LocationRecord
}

type compiledRange struct {
	prefix   netip.Prefix
	location fraud.GeoLocation
}

// NewStaticGeoResolver compiles the range tables. Invalid CIDRs fail
// construction so a bad table is caught at startup.
func NewStaticGeoResolver(ranges []GeoRange, vpnCIDRs []string, highRiskCountries []string) (*StaticGeoResolver, error) {
	r := &StaticGeoResolver{
		highRisk: make(map[string]bool, len(highRiskCountries)),
		history:  make(map[uuid.UUID][]fraud.LocationRecord),
	}

	for _, gr := range ranges {
		prefix, err := netip.ParsePrefix(gr.CIDR)
		if err != nil {
			return nil, fmt.Errorf("invalid geo range %q: %w", gr.CIDR, err)
		}
		r.ranges = append(r.ranges, compiledRange{prefix: prefix, location: gr.Location})
	}

	for _, cidr := range vpnCIDRs {
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid vpn range %q: %w", cidr, err)
		}
		r.vpnRanges = append(r.vpnRanges, prefix)
	}

	for _, country := range highRiskCountries {
		r.highRisk[strings.ToUpper(country)] = true
	}

	return r, nil
}

func (r *StaticGeoResolver) ResolveLocation(_ context.Context, ipAddress string) (*fraud.GeoLocation, error) {
	addr, err := netip.ParseAddr(ipAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid ip address %q: %w", ipAddress, err)
	}

	for _, cr := range r.ranges {
		if cr.prefix.Contains(addr) {
			location := cr.location
			location.IsVPN = location.IsVPN || r.isVPN(addr)
			return &location, nil
		}
	}

	return nil, fmt.Errorf("no geo range matches %s", ipAddress)
}

func (r *StaticGeoResolver) GetLocationHistory(_ context.Context, userID uuid.UUID) ([]fraud.LocationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.history[userID]
	out := make([]fraud.LocationRecord, len(records))
	copy(out, records)
	return out, nil
}

func (r *StaticGeoResolver) IsHighRiskCountry(_ context.Context, countryCode string) (bool, error) {
	return r.highRisk[strings.ToUpper(countryCode)], nil
}

// RecordLocation prepends a location observation, keeping the history most
// recent first as the engine expects.
func (r *StaticGeoResolver) RecordLocation(userID uuid.UUID, record fraud.LocationRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	const maxHistory = 50
	records := append([]fraud.LocationRecord{record}, r.history[userID]...)
	if len(records) > maxHistory {
		records = records[:maxHistory]
	}
	r.history[userID] = records
}

func (r *StaticGeoResolver) isVPN(addr netip.Addr) bool {
	for _, prefix := range r.vpnRanges {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
