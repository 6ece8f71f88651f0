package model

// PlayerName uniquely identifies a player across the system.
// Names are stored trimmed with internal whitespace collapsed.
type PlayerName string

// SkillRating is the training state of one skill on the character sheet
type SkillRating struct {
	Trained bool `json:"trained"`
	Plus10  bool `json:"plus10"`
	Plus20  bool `json:"plus20"`
}

// ItemLine is one row of a gear/inventory/weapons list on the sheet
type ItemLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// TabInfo is the character sheet embedded in a player record.
// Known fields are explicit; anything else the client sent rides in Extra
// so older sheets survive a round-trip.
type TabInfo struct {
	Characteristics map[string]int         `json:"characteristics"`
	Skills          map[string]SkillRating `json:"skills"`
	Renown          string                 `json:"renown"`
	RP              int                    `json:"rp"`
	XP              int                    `json:"xp"`
	XPSpent         int                    `json:"xpSpent"`
	Wounds          int                    `json:"wounds"`
	Movement        int                    `json:"movement"`
	Description     string                 `json:"description,omitempty"`
	Gear            []ItemLine             `json:"gear,omitempty"`
	Inventory       []ItemLine             `json:"inventory,omitempty"`
	Weapons         []ItemLine             `json:"weapons,omitempty"`
	Armour          map[string]int         `json:"armour,omitempty"`
	Extra           map[string]any         `json:"extra,omitempty"`
}

// Player is a canonical player record as produced by the normalizer.
// PwHash is an opaque hash supplied by the auth service; plaintext
// passwords never reach this struct.
type Player struct {
	Name              PlayerName     `json:"name"`
	RollerInfo        map[string]any `json:"rollerInfo,omitempty"`
	ShopInfo          map[string]any `json:"shopInfo,omitempty"`
	Tab               TabInfo        `json:"tabInfo"`
	PwHash            string         `json:"pwHash,omitempty"`
	RequisitionPoints int            `json:"requisitionPoints"`
	RenownLevel       string         `json:"renownLevel"`
}
