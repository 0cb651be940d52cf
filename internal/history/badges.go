package history

// Rarity tiers order badges from easiest to hardest to earn.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Badge is a static catalog entry. Earned status is computed against the
// number of completed challenges; the catalog itself never changes at runtime.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Rarity      Rarity `json:"rarity"`
	// Threshold is the number of completed challenges needed to earn the badge.
	Threshold int `json:"threshold"`
}

// EarnedBadge pairs a catalog entry with its computed earned status.
type EarnedBadge struct {
	Badge
	Earned bool `json:"earned"`
}

// badgeCatalog lists every badge in unlock order.
var badgeCatalog = []Badge{
	{
		ID:          "first-challenge",
		Name:        "First Steps",
		Description: "Finish your first 14-day challenge.",
		Icon:        "figure.walk",
		Rarity:      RarityCommon,
		Threshold:   1,
	},
	{
		ID:          "three-challenges",
		Name:        "Habit Builder",
		Description: "Finish three challenges.",
		Icon:        "flame",
		Rarity:      RarityCommon,
		Threshold:   3,
	},
	{
		ID:          "five-challenges",
		Name:        "Committed",
		Description: "Finish five challenges.",
		Icon:        "medal",
		Rarity:      RarityRare,
		Threshold:   5,
	},
	{
		ID:          "ten-challenges",
		Name:        "Iron Will",
		Description: "Finish ten challenges.",
		Icon:        "trophy",
		Rarity:      RarityEpic,
		Threshold:   10,
	},
	{
		ID:          "twentyfive-challenges",
		Name:        "Unstoppable",
		Description: "Finish twenty-five challenges.",
		Icon:        "crown",
		Rarity:      RarityLegendary,
		Threshold:   25,
	},
}

// Badges evaluates the whole catalog against a completed challenge count.
func Badges(completedChallenges int) []EarnedBadge {
	badges := make([]EarnedBadge, len(badgeCatalog))
	for i, b := range badgeCatalog {
		badges[i] = EarnedBadge{Badge: b, Earned: completedChallenges >= b.Threshold}
	}
	return badges
}
