package domain

// Tier is a named milestone reached once a subject's cumulative points cross
// its threshold. Tiers are derived from the ledger total, never persisted.
type Tier struct {
	Threshold int
	Label     string
	Color     string
}

var tierTable = []Tier{
	{Threshold: 50, Label: "Engagé", Color: "#10B981"},
	{Threshold: 100, Label: "Leader en herbe", Color: "#3B82F6"},
	{Threshold: 200, Label: "Champion", Color: "#8B5CF6"},
}

// Tiers returns the ordered tier table.
func Tiers() []Tier {
	out := make([]Tier, len(tierTable))
	copy(out, tierTable)
	return out
}

// TierForTotal returns the highest tier whose threshold is at or below total,
// or nil when the total is below the first threshold.
func TierForTotal(total int) *Tier {
	var current *Tier
	for i := range tierTable {
		if total >= tierTable[i].Threshold {
			tier := tierTable[i]
			current = &tier
		}
	}
	return current
}

// NextTierAfter returns the first tier whose threshold is above total, or nil
// when the subject is already at or above the top tier.
func NextTierAfter(total int) *Tier {
	for i := range tierTable {
		if total < tierTable[i].Threshold {
			tier := tierTable[i]
			return &tier
		}
	}
	return nil
}

type attendanceBand struct {
	minPercent int
	points     int
}

// Scanned highest threshold first; the first matching band wins.
var attendanceBands = []attendanceBand{
	{minPercent: 80, points: 3},
	{minPercent: 60, points: 2},
	{minPercent: 40, points: 1},
}

// PointsForAttendanceRate maps a mentee-presence percentage to tally points.
// Percentages below the lowest band score zero.
func PointsForAttendanceRate(percent int) int {
	for _, band := range attendanceBands {
		if percent >= band.minPercent {
			return band.points
		}
	}
	return 0
}
