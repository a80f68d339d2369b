package aggregates

import (
	"context"

	"github.com/google/uuid"
)

var RoadmapTopicsAggregateContract = Contract{
	Name:        "Roadmap.TopicsAggregate",
	TxOwnership: TxOwnedByAggregate,
	Notes:       "Owns atomic replacement of AI and author topic labels per roadmap scope.",
}

// RoadmapTopicsAggregate owns the roadmap_topic label sets.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation (cause ErrEmptySelection / ErrInvalidTopics), CodeNotFound,
// CodeConflict, CodeRetryable, CodeInternal.
type RoadmapTopicsAggregate interface {
	Aggregate

	// ReplaceAILabels atomically swaps the source=ai rows of one (roadmap, version) scope.
	ReplaceAILabels(ctx context.Context, in ReplaceAILabelsInput) (ReplaceLabelsResult, error)

	// ReplaceAuthorLabels atomically swaps the source=author rows of the roadmap's current scope.
	ReplaceAuthorLabels(ctx context.Context, in ReplaceAuthorLabelsInput) (ReplaceLabelsResult, error)

	// ClearAuthorLabels removes author rows so AI labels become authoritative again.
	ClearAuthorLabels(ctx context.Context, roadmapID uuid.UUID) (int, error)

	// DeleteRoadmap removes the roadmap together with its labels and progress.
	DeleteRoadmap(ctx context.Context, roadmapID uuid.UUID) error
}

// AILabel is one classifier output entry keyed by topic slug.
type AILabel struct {
	Slug       string
	Confidence float64
	IsPrimary  bool
}

type ReplaceAILabelsInput struct {
	RoadmapID uuid.UUID
	VersionID *uuid.UUID
	Labels    []AILabel
}

type ReplaceAuthorLabelsInput struct {
	RoadmapID uuid.UUID
	TopicIDs  []uuid.UUID
	PrimaryID *uuid.UUID
}

type ReplaceLabelsResult struct {
	RoadmapID uuid.UUID
	ScopeKey  string
	Deleted   int
	Inserted  int
	PrimaryID *uuid.UUID
	// CreatedTopics lists catalog slugs inserted while ensuring AI label topics exist.
	CreatedTopics []string
}
