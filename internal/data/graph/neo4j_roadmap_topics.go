package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/neo4jdb"
)

// RoadmapProjection is the effective current-scope label set of one roadmap.
type RoadmapProjection struct {
	RoadmapID uuid.UUID
	OwnerID   uuid.UUID
	Published bool
	CreatedAt time.Time
	Topics    []ProjectedTopic
}

type ProjectedTopic struct {
	ID         uuid.UUID
	Slug       string
	IsPrimary  bool
	Confidence float64
}

// OverlapCandidate is a roadmap reached from a user's topics, with the number of
// distinct shared topics.
type OverlapCandidate struct {
	RoadmapID uuid.UUID
	Overlap   int64
}

// RoadmapTopics mirrors roadmap->topic labels into Neo4j as
// (:User)-[:OWNS]->(:Roadmap)-[:TAGGED]->(:Topic).
type RoadmapTopics struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewRoadmapTopics(client *neo4jdb.Client, baseLog *logger.Logger) *RoadmapTopics {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &RoadmapTopics{client: client, log: baseLog.With("graph", "RoadmapTopics")}
}

func (g *RoadmapTopics) enabled() bool {
	return g != nil && g.client.Enabled()
}

// EnsureSchema creates the uniqueness constraints. Failures are logged only.
func (g *RoadmapTopics) EnsureSchema(ctx context.Context) {
	if !g.enabled() {
		return
	}
	for _, stmt := range []string{
		`CREATE CONSTRAINT roadmap_id_unique IF NOT EXISTS FOR (r:Roadmap) REQUIRE r.id IS UNIQUE`,
		`CREATE CONSTRAINT topic_id_unique IF NOT EXISTS FOR (t:Topic) REQUIRE t.id IS UNIQUE`,
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
	} {
		err := g.client.Write(ctx, func(tx neo4j.ManagedTransaction) error {
			return neo4jdb.Exec(ctx, tx, stmt, nil)
		})
		if err != nil {
			g.log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	}
}

// UpsertRoadmapTopics replaces the TAGGED edges of one roadmap.
func (g *RoadmapTopics) UpsertRoadmapTopics(ctx context.Context, p RoadmapProjection) error {
	if !g.enabled() || p.RoadmapID == uuid.Nil {
		return nil
	}
	params := projectionParams(p, time.Now().UTC())

	err := g.client.Write(ctx, func(tx neo4j.ManagedTransaction) error {
		err := neo4jdb.Exec(ctx, tx, `
MERGE (r:Roadmap {id: $roadmap_id})
SET r.owner_id = $owner_id,
    r.published = $published,
    r.created_at_ms = $created_at_ms,
    r.synced_at = $synced_at
WITH r
MERGE (u:User {id: $owner_id})
MERGE (u)-[:OWNS]->(r)
WITH r
OPTIONAL MATCH (r)-[old:TAGGED]->(:Topic)
DELETE old
`, params)
		if err != nil || len(p.Topics) == 0 {
			return err
		}
		return neo4jdb.Exec(ctx, tx, `
MATCH (r:Roadmap {id: $roadmap_id})
UNWIND $topics AS t
MERGE (tp:Topic {id: t.topic_id})
SET tp.slug = t.slug
MERGE (r)-[e:TAGGED]->(tp)
SET e.is_primary = t.is_primary,
    e.confidence = t.confidence
`, params)
	})
	if err != nil {
		return fmt.Errorf("neo4j upsert roadmap topics: %w", err)
	}
	return nil
}

func (g *RoadmapTopics) DeleteRoadmap(ctx context.Context, roadmapID uuid.UUID) error {
	if !g.enabled() || roadmapID == uuid.Nil {
		return nil
	}
	err := g.client.Write(ctx, func(tx neo4j.ManagedTransaction) error {
		return neo4jdb.Exec(ctx, tx, `MATCH (r:Roadmap {id: $roadmap_id}) DETACH DELETE r`,
			map[string]any{"roadmap_id": roadmapID.String()})
	})
	if err != nil {
		return fmt.Errorf("neo4j delete roadmap: %w", err)
	}
	return nil
}

// OverlappingRoadmaps walks user -> own roadmaps -> topics -> other owners' published
// roadmaps. Candidates still need hydration against SQL, which stays authoritative.
func (g *RoadmapTopics) OverlappingRoadmaps(ctx context.Context, userID uuid.UUID, limit int) ([]OverlapCandidate, error) {
	out := []OverlapCandidate{}
	if !g.enabled() {
		return nil, neo4jdb.ErrDisabled
	}
	if userID == uuid.Nil || limit <= 0 {
		return out, nil
	}
	rows, err := g.client.Read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (:User {id: $user_id})-[:OWNS]->(:Roadmap)-[:TAGGED]->(t:Topic)<-[:TAGGED]-(r:Roadmap)
WHERE r.owner_id <> $user_id AND r.published = true
WITH r, count(DISTINCT t) AS overlap
RETURN r.id AS roadmap_id, overlap
ORDER BY overlap DESC, r.created_at_ms DESC, r.id ASC
LIMIT $limit
`, map[string]any{"user_id": userID.String(), "limit": int64(limit)})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j overlapping roadmaps: %w", err)
	}
	records, _ := rows.([]*neo4j.Record)
	for _, rec := range records {
		c, ok := candidateFromRecord(rec)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func projectionParams(p RoadmapProjection, now time.Time) map[string]any {
	topics := make([]map[string]any, 0, len(p.Topics))
	for _, t := range p.Topics {
		if t.ID == uuid.Nil {
			continue
		}
		topics = append(topics, map[string]any{
			"topic_id":   t.ID.String(),
			"slug":       t.Slug,
			"is_primary": t.IsPrimary,
			"confidence": t.Confidence,
		})
	}
	return map[string]any{
		"roadmap_id":    p.RoadmapID.String(),
		"owner_id":      p.OwnerID.String(),
		"published":     p.Published,
		"created_at_ms": p.CreatedAt.UTC().UnixMilli(),
		"synced_at":     now.Format(time.RFC3339Nano),
		"topics":        topics,
	}
}

func candidateFromRecord(rec *neo4j.Record) (OverlapCandidate, bool) {
	if rec == nil {
		return OverlapCandidate{}, false
	}
	rawID, _ := rec.Get("roadmap_id")
	rawOverlap, _ := rec.Get("overlap")
	s, _ := rawID.(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return OverlapCandidate{}, false
	}
	n, _ := rawOverlap.(int64)
	if n <= 0 {
		return OverlapCandidate{}, false
	}
	return OverlapCandidate{RoadmapID: id, Overlap: n}, true
}
