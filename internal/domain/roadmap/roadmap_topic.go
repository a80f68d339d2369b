package roadmap

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LabelSource records who produced a topic label.
type LabelSource string

const (
	SourceAI     LabelSource = "ai"
	SourceAuthor LabelSource = "author"
)

func (s LabelSource) Valid() bool { return s == SourceAI || s == SourceAuthor }

// CurrentScope is the scope key of unversioned labels.
const CurrentScope = "current"

// ScopeKey maps a nullable version id onto a non-null key so unique indexes hold for
// the current scope too.
func ScopeKey(versionID *uuid.UUID) string {
	if versionID == nil || *versionID == uuid.Nil {
		return CurrentScope
	}
	return versionID.String()
}

type RoadmapTopic struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	RoadmapID  uuid.UUID   `gorm:"type:uuid;not null;index:idx_roadmap_topic_scope,unique,priority:1" json:"roadmap_id"`
	ScopeKey   string      `gorm:"column:scope_key;not null;index:idx_roadmap_topic_scope,unique,priority:2" json:"-"`
	TopicID    uuid.UUID   `gorm:"type:uuid;not null;index:idx_roadmap_topic_scope,unique,priority:3;index" json:"topic_id"`
	Source     LabelSource `gorm:"column:source;not null;index:idx_roadmap_topic_scope,unique,priority:4" json:"source"`
	VersionID  *uuid.UUID  `gorm:"type:uuid;column:version_id" json:"version_id,omitempty"`
	Confidence float64     `gorm:"column:confidence;not null" json:"confidence"`
	IsPrimary  bool        `gorm:"column:is_primary;not null;default:false" json:"is_primary"`
	CreatedAt  time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"not null" json:"updated_at"`
}

func (RoadmapTopic) TableName() string { return "roadmap_topic" }

func (rt *RoadmapTopic) BeforeCreate(*gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	if rt.ScopeKey == "" {
		rt.ScopeKey = ScopeKey(rt.VersionID)
	}
	return nil
}
