package rank

import (
	"strings"

	"github.com/mkarlsson/surebet/internal/engine"
)

// Region buckets bookmakers by licensing geography. The mapping is a policy
// concern applied after the engine, not part of its contract.
type Region string

const (
	RegionUS Region = "us"
	RegionUK Region = "uk"
	RegionEU Region = "eu"
	RegionAU Region = "au"
)

// DefaultBookRegions maps known bookmaker keys to their region.
var DefaultBookRegions = map[string]Region{
	"draftkings":     RegionUS,
	"fanduel":        RegionUS,
	"betmgm":         RegionUS,
	"caesars":        RegionUS,
	"pointsbetus":    RegionUS,
	"bovada":         RegionUS,
	"betonlineag":    RegionUS,
	"mybookieag":     RegionUS,
	"betrivers":      RegionUS,
	"williamhill":    RegionUK,
	"williamhill_us": RegionUS,
	"bet365":         RegionUK,
	"ladbrokes":      RegionUK,
	"coral":          RegionUK,
	"betvictor":      RegionUK,
	"betfair":        RegionUK,
	"matchbook":      RegionUK,
	"skybet":         RegionUK,
	"paddypower":     RegionUK,
	"pinnacle":       RegionEU,
	"onexbet":        RegionEU,
	"marathonbet":    RegionEU,
	"unibet":         RegionEU,
	"betsson":        RegionEU,
	"nordicbet":      RegionEU,
	"sportsbet":      RegionAU,
	"tab":            RegionAU,
	"neds":           RegionAU,
	"ladbrokes_au":   RegionAU,
	"pointsbetau":    RegionAU,
	"betfair_ex_au":  RegionAU,
}

// FilterByRegion drops opportunities that depend on a bookmaker mapped to a
// disallowed region. Bookmakers missing from the table pass through; the
// table is ad hoc and a subscriber can always discard an unknown book
// manually.
func FilterByRegion(ops []engine.Opportunity, allowed map[Region]bool, table map[string]Region) []engine.Opportunity {
	if len(allowed) == 0 {
		return ops
	}
	if table == nil {
		table = DefaultBookRegions
	}
	out := ops[:0:0]
	for _, op := range ops {
		ok := true
		for _, bq := range op.BestOdds {
			region, known := table[strings.ToLower(bq.Bookmaker)]
			if known && !allowed[region] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, op)
		}
	}
	return out
}
