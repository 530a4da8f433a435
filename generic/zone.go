package generic

import (
	"sort"
	"time"
)

// =============================================================================
// ZONES - Fixed-offset zones resolved from human-readable labels
// =============================================================================

// ZoneCode is the canonical code of a supported zone.
type ZoneCode string

const (
	ZonePST ZoneCode = "PST"
	ZoneEST ZoneCode = "EST"
	ZoneCET ZoneCode = "CET"
	ZoneGMT ZoneCode = "GMT"
)

// Region partitions zone codes into US and non-US.
// It decides which date convention a record is parsed with.
type Region string

const (
	RegionUS    Region = "US"
	RegionNonUS Region = "NonUS"
)

// Convention returns the date convention used by records in the region.
func (r Region) Convention() Convention {
	if r == RegionUS {
		return MonthFirst
	}
	return DayFirst
}

// Zone is a resolved zone: a code with a fixed UTC offset. There is no
// daylight-saving adjustment.
type Zone struct {
	Code   ZoneCode
	Offset time.Duration
	Region Region
}

// Location returns a fixed-offset location named after the zone code.
func (z Zone) Location() *time.Location {
	return time.FixedZone(string(z.Code), int(z.Offset/time.Second))
}

// usCodes is the closed set of US zone codes.
var usCodes = map[ZoneCode]bool{ZonePST: true, ZoneEST: true}

// knownZones maps every supported code to its fixed offset.
var knownZones = map[ZoneCode]time.Duration{
	ZonePST: -8 * time.Hour,
	ZoneEST: -5 * time.Hour,
	ZoneCET: 1 * time.Hour,
	ZoneGMT: 0,
}

// Classify reports the region of a code. Unknown codes are non-US; callers
// resolve labels first, so they never reach here with an unknown code.
func Classify(code ZoneCode) Region {
	if usCodes[code] {
		return RegionUS
	}
	return RegionNonUS
}

// KnownCodes returns every supported zone code in sorted order.
func KnownCodes() []ZoneCode {
	codes := make([]ZoneCode, 0, len(knownZones))
	for c := range knownZones {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// ZoneFor returns the zone for a known code.
func ZoneFor(code ZoneCode) (Zone, bool) {
	offset, ok := knownZones[code]
	if !ok {
		return Zone{}, false
	}
	return Zone{Code: code, Offset: offset, Region: Classify(code)}, true
}

// =============================================================================
// RESOLVER - Exact label lookup against a read-only table
// =============================================================================

// DefaultZoneLabels is the label table shipped with the engine.
func DefaultZoneLabels() map[string]ZoneCode {
	return map[string]ZoneCode{
		"US (PST)":     ZonePST,
		"US (EST)":     ZoneEST,
		"Europe (CET)": ZoneCET,
		"Europe (GMT)": ZoneGMT,
	}
}

// ZoneResolver maps zone labels to zones. It copies its table at
// construction and never mutates it, so it is safe for concurrent use.
type ZoneResolver struct {
	labels map[string]Zone
}

// NewZoneResolver builds a resolver over labels. Entries whose code is not
// a known zone are dropped.
func NewZoneResolver(labels map[string]ZoneCode) *ZoneResolver {
	table := make(map[string]Zone, len(labels))
	for label, code := range labels {
		if z, ok := ZoneFor(code); ok {
			table[label] = z
		}
	}
	return &ZoneResolver{labels: table}
}

// DefaultZoneResolver returns a resolver over DefaultZoneLabels.
func DefaultZoneResolver() *ZoneResolver {
	return NewZoneResolver(DefaultZoneLabels())
}

// Resolve looks a label up by exact match. There is no trimming or case folding.
func (r *ZoneResolver) Resolve(label string) (Zone, error) {
	z, ok := r.labels[label]
	if !ok {
		return Zone{}, &UnknownZoneError{Label: label}
	}
	return z, nil
}

// ZoneEntry is one row of the resolver's table.
type ZoneEntry struct {
	Label string
	Zone  Zone
}

// Entries returns the table sorted by label.
func (r *ZoneResolver) Entries() []ZoneEntry {
	entries := make([]ZoneEntry, 0, len(r.labels))
	for label, z := range r.labels {
		entries = append(entries, ZoneEntry{Label: label, Zone: z})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Label < entries[j].Label })
	return entries
}
