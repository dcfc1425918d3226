package core

// Well-known metadata document schemas for the deployed seat and hub
// contracts. The metadata module stores opaque documents; these types give
// callers and the CLI a concrete shape to encode and decode.

// SeatMetadata describes a seat collection.
type SeatMetadata struct {
	Name           string        `json:"name"`
	ImageURI       string        `json:"image_uri"`
	Description    string        `json:"description"`
	Benefits       []SeatBenefit `json:"benefits"`
	TemplateNumber uint8         `json:"template_number"`
	ImageSettings  ImageSettings `json:"image_settings"`
}

// SeatBenefit is one perk granted to seat holders.
type SeatBenefit struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ImageSettings controls which names are rendered onto the seat image.
type ImageSettings struct {
	SeatName bool `json:"seat_name"`
	HubName  bool `json:"hub_name"`
}

// TokenMetadata is the per-token extension document minted into the ledger.
type TokenMetadata struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	// RoyaltyPercentage is the minter's cut on resale; royalties are owed on
	// the token only when it is set.
	RoyaltyPercentage     *uint64 `json:"royalty_percentage,omitempty"`
	RoyaltyPaymentAddress string  `json:"royalty_payment_address,omitempty"`
}

// HubMetadata describes a hub collection.
type HubMetadata struct {
	Name        string       `json:"name"`
	HubURL      string       `json:"hub_url"`
	Description string       `json:"description"`
	Tags        []string     `json:"tags"`
	SocialLinks []SocialLink `json:"social_links"`
	Creator     string       `json:"creator"`
	ImageURL    string       `json:"image_url"`
}

// SocialLink is a named external URL on a hub profile.
type SocialLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
