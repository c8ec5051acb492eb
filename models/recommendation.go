package models

// RecommendationRequest is the body of POST /rentals/recommendations.
type RecommendationRequest struct {
	Budget             *float64 `json:"budget"`
	Bedrooms           *int     `json:"bedrooms"`
	PreferredLocations []string `json:"preferredLocations"`
	PropertyType       string   `json:"propertyType"`
	Furnished          string   `json:"furnished"`
	Features           []string `json:"features"`
	Limit              *int     `json:"limit"`
}

// Narrative is generated text attached to structured results. Generated is
// false when the text is the placeholder.
type Narrative struct {
	Text      string `json:"text"`
	Generated bool   `json:"generated"`
}

// ChatMessage is one turn of a conversation passed to the text generator.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
