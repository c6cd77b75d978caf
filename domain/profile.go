package domain

// Profile identifies the local participant. Established once at join time,
// persisted across restarts, immutable except by explicit re-join.
type Profile struct {
	Name   string `json:"name" validate:"required,min=1,max=64"`
	Avatar string `json:"avatar" validate:"max=256"`
}
