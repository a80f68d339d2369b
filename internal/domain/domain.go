package domain

import (
	"github.com/sayevvv/LearnUp-sub001/internal/domain/catalog"
	"github.com/sayevvv/LearnUp-sub001/internal/domain/roadmap"
)

type Topic = catalog.Topic

type Roadmap = roadmap.Roadmap
type Milestone = roadmap.Milestone
type RoadmapProgress = roadmap.RoadmapProgress
type RoadmapTopic = roadmap.RoadmapTopic
type LabelSource = roadmap.LabelSource

const (
	DefaultTopicSlug = catalog.DefaultSlug

	SourceAI     = roadmap.SourceAI
	SourceAuthor = roadmap.SourceAuthor
	CurrentScope = roadmap.CurrentScope
)

var (
	EncodeTopicAliases = catalog.EncodeAliases
	EncodeMilestones   = roadmap.EncodeMilestones
	ScopeKey           = roadmap.ScopeKey
)

// Models lists every table this service migrates.
func Models() []interface{} {
	return []interface{}{
		&catalog.Topic{},
		&roadmap.Roadmap{},
		&roadmap.RoadmapProgress{},
		&roadmap.RoadmapTopic{},
	}
}
