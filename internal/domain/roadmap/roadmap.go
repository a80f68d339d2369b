package roadmap

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Milestone struct {
	Topic string `json:"topic"`
}

// Roadmap is owned by the roadmap-management side of the product; this service reads
// it and only creates rows through the thin create endpoint.
type Roadmap struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title      string         `gorm:"column:title;not null" json:"title"`
	Summary    string         `gorm:"column:summary;type:text" json:"summary,omitempty"`
	Milestones datatypes.JSON `gorm:"column:milestones" json:"milestones,omitempty"` // []Milestone
	Published  bool           `gorm:"column:published;not null;default:false;index" json:"published"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Roadmap) TableName() string { return "roadmap" }

func (r *Roadmap) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// MilestoneTopics returns the non-empty milestone topics in order.
func (r *Roadmap) MilestoneTopics() []string {
	if r == nil || len(r.Milestones) == 0 {
		return nil
	}
	var ms []Milestone
	if err := json.Unmarshal(r.Milestones, &ms); err != nil {
		return nil
	}
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		if s := strings.TrimSpace(m.Topic); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func EncodeMilestones(ms []Milestone) datatypes.JSON {
	if len(ms) == 0 {
		return datatypes.JSON("[]")
	}
	raw, _ := json.Marshal(ms)
	return datatypes.JSON(raw)
}

type RoadmapProgress struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoadmapID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"roadmap_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Percent   float64   `gorm:"column:percent;not null;default:0" json:"percent"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (RoadmapProgress) TableName() string { return "roadmap_progress" }

func (p *RoadmapProgress) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
