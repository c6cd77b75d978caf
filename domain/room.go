package domain

// Room is a named shared message channel with an associated agent personality.
// Message sequences are owned by the projection store, not by the Room itself.
type Room struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Personality string `json:"personality"`
}
