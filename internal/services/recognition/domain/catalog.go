package domain

// DefaultBadgeCatalog returns the seeded badge reference data. IDs are
// assigned at seed time; the slug is the stable identity.
func DefaultBadgeCatalog() []Badge {
	return []Badge{
		{
			Slug:        BadgeSemeur,
			Name:        "Semeur",
			Description: "Invited 3 new people to a gathering",
			Icon:        "seed",
			Color:       "#10B981",
			Criteria:    "invitations",
			Threshold:   3,
		},
		{
			Slug:        BadgeRestaurateur,
			Name:        "Restaurateur",
			Description: "Helped re-engage 2 distanced members",
			Icon:        "heart-handshake",
			Color:       "#3B82F6",
			Criteria:    "reengagements",
			Threshold:   2,
		},
		{
			Slug:        BadgeFidele,
			Name:        "Fidèle",
			Description: "Full mentee attendance over the trailing 3 months",
			Icon:        "shield-check",
			Color:       "#F59E0B",
			Criteria:    "attendance",
			Threshold:   12,
		},
		{
			Slug:        BadgeTransforme,
			Name:        "Transformé",
			Description: "Shared a validated testimony",
			Icon:        "sparkles",
			Color:       "#8B5CF6",
			Criteria:    "testimony",
			Threshold:   1,
		},
		{
			Slug:        BadgePionnier,
			Name:        "Pionnier",
			Description: "Leads a cell or supervises a discipleship family",
			Icon:        "rocket",
			Color:       "#EF4444",
			Criteria:    "leadership",
			Threshold:   1,
		},
		{
			Slug:        BadgeConnecteur,
			Name:        "Connecteur",
			Description: "Integrated 3 new members into the community",
			Icon:        "users",
			Color:       "#06B6D4",
			Criteria:    "integrations",
			Threshold:   3,
		},
		{
			Slug:        BadgeAmbassadeur,
			Name:        "Ambassadeur",
			Description: "Invited 5 people to a gathering",
			Icon:        "megaphone",
			Color:       "#EC4899",
			Criteria:    "invitations",
			Threshold:   5,
		},
		{
			Slug:        BadgeServiteur,
			Name:        "Serviteur",
			Description: "Filed 10 follow-up reports",
			Icon:        "hand-helping",
			Color:       "#84CC16",
			Criteria:    "reports",
			Threshold:   10,
		},
	}
}
