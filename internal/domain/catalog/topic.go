package catalog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultSlug is the fallback topic for text that matches nothing in the catalog.
const DefaultSlug = "other"

type Topic struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Slug      string         `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Aliases   datatypes.JSON `gorm:"column:aliases" json:"aliases,omitempty"` // ordered []string
	Position  int            `gorm:"column:position;not null;default:0;index" json:"position"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Topic) TableName() string { return "topic" }

func (t *Topic) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// AliasList decodes Aliases. Malformed JSON yields nil.
func (t *Topic) AliasList() []string {
	if t == nil || len(t.Aliases) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(t.Aliases, &out); err != nil {
		return nil
	}
	return out
}

func EncodeAliases(aliases []string) datatypes.JSON {
	if len(aliases) == 0 {
		return datatypes.JSON("[]")
	}
	raw, _ := json.Marshal(aliases)
	return datatypes.JSON(raw)
}
