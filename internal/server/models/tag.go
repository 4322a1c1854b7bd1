package models

import "github.com/google/uuid"

// Tag kinds.
const (
	TagKindLanguage  = "lang"
	TagKindFramework = "fw"
	TagKindTool      = "tool"
)

type Tag struct {
	ID   int64     `json:"id"`
	UUID uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
	Kind string    `json:"kind"`
}
