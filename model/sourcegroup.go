package model

// SourceGroup is a named, tiered subset of the provider's data that can be
// synced in one fetch. The three booleans say which strategies include the
// group; a group with all three false never runs.
type SourceGroup struct {
	ID          string
	Name        string
	Tier        int
	Normal      bool
	DeadlineDay bool
	Emergency   bool
}

// SourceGroups is the static group configuration. Tier-1 leagues run under
// every strategy; the long tail only runs on the slow normal cadence, and
// emergency mode trims the run down to the leagues people actually watch on
// deadline day.
var SourceGroups = []SourceGroup{
	{ID: "premier-league", Name: "Premier League", Tier: 1, Normal: true, DeadlineDay: true, Emergency: true},
	{ID: "la-liga", Name: "La Liga", Tier: 1, Normal: true, DeadlineDay: true, Emergency: true},
	{ID: "serie-a", Name: "Serie A", Tier: 1, Normal: true, DeadlineDay: true, Emergency: false},
	{ID: "bundesliga", Name: "Bundesliga", Tier: 1, Normal: true, DeadlineDay: true, Emergency: false},
	{ID: "ligue-1", Name: "Ligue 1", Tier: 2, Normal: true, DeadlineDay: true, Emergency: false},
	{ID: "eredivisie", Name: "Eredivisie", Tier: 2, Normal: true, DeadlineDay: false, Emergency: false},
	{ID: "primeira-liga", Name: "Primeira Liga", Tier: 2, Normal: true, DeadlineDay: false, Emergency: false},
	{ID: "championship", Name: "EFL Championship", Tier: 3, Normal: true, DeadlineDay: true, Emergency: false},
	{ID: "mls", Name: "Major League Soccer", Tier: 3, Normal: true, DeadlineDay: false, Emergency: false},
	{ID: "saudi-pro-league", Name: "Saudi Pro League", Tier: 3, Normal: true, DeadlineDay: true, Emergency: false},
}

func (g *SourceGroup) IncludedIn(s SyncStrategy) bool {
	switch s {
	case STRATEGY_DEADLINE_DAY:
		return g.DeadlineDay
	case STRATEGY_EMERGENCY:
		return g.Emergency
	default:
		return g.Normal
	}
}

// GroupsForStrategy returns the groups whose inclusion flag matches the
// strategy, in configuration order.
func GroupsForStrategy(s SyncStrategy) []SourceGroup {
	groups := make([]SourceGroup, 0, len(SourceGroups))
	for _, g := range SourceGroups {
		if g.IncludedIn(s) {
			groups = append(groups, g)
		}
	}
	return groups
}
