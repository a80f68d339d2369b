package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sayevvv/LearnUp-sub001/internal/data/aggregates"
	"github.com/sayevvv/LearnUp-sub001/internal/data/graph"
	domainagg "github.com/sayevvv/LearnUp-sub001/internal/domain/aggregates"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/recommend"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/catalog"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/classify"
	"github.com/sayevvv/LearnUp-sub001/internal/observability"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/neo4jdb"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/redisdb"
)

// Clients are the optional backing stores. Nil fields mean "not configured".
type Clients struct {
	Redis *goredis.Client
	Neo4j *neo4jdb.Client
	Graph *graph.RoadmapTopics
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	rdb, err := redisdb.New(log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}

	neo, err := neo4jdb.New(log, cfg.Neo4j)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}

	out := Clients{Redis: rdb, Neo4j: neo}
	if neo != nil {
		out.Graph = graph.NewRoadmapTopics(neo, log)
		out.Graph.EnsureSchema(ctx)
	}
	return out, nil
}

func (c Clients) Close(ctx context.Context) {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
}

type Services struct {
	Catalog    *catalog.Cache
	Classifier *classify.Classifier
	Aggregate  domainagg.RoadmapTopicsAggregate
	Topics     topics.Usecases
	Feeds      *recommend.Usecases
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, metrics *observability.Metrics, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	classifier, err := classify.New(cfg.Classifier)
	if err != nil {
		return Services{}, fmt.Errorf("init classifier: %w", err)
	}

	cache := catalog.NewCache(catalog.CacheDeps{
		Log:         log,
		Topics:      reposet.Topic,
		Metrics:     metrics,
		Redis:       clients.Redis,
		Channel:     cfg.CatalogInvalidateChannel,
		DefaultSlug: cfg.Classifier.DefaultSlug,
	})

	aggDeps := aggregates.RoadmapTopicsAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: aggregates.NewObservabilityHooks(metrics),
		},
		Roadmaps: reposet.Roadmap,
		Progress: reposet.Progress,
		Labels:   reposet.RoadmapTopic,
		Topics:   reposet.Topic,
		Metrics:  metrics,
	}
	if clients.Graph != nil {
		aggDeps.Projector = clients.Graph
	}
	agg := aggregates.NewRoadmapTopicsAggregate(aggDeps)

	topicsUC := topics.New(topics.UsecasesDeps{
		DB:         db,
		Log:        log,
		Metrics:    metrics,
		Catalog:    cache,
		Classifier: classifier,
		Topics:     reposet.Topic,
		Roadmaps:   reposet.Roadmap,
		Labels:     reposet.RoadmapTopic,
		Aggregate:  agg,
	})

	feedDeps := recommend.UsecasesDeps{
		Log:      log,
		Metrics:  metrics,
		Config:   cfg.Feeds,
		Roadmaps: reposet.Roadmap,
		Progress: reposet.Progress,
		Labels:   reposet.RoadmapTopic,
		Topics:   reposet.Topic,
		Catalog:  cache,
		Redis:    clients.Redis,
	}
	if clients.Graph != nil {
		feedDeps.Graph = clients.Graph
	}

	return Services{
		Catalog:    cache,
		Classifier: classifier,
		Aggregate:  agg,
		Topics:     topicsUC,
		Feeds:      recommend.New(feedDeps),
	}, nil
}

// seedCatalog inserts the curated (or file-provided) topics, loads the cache and starts
// listening for invalidations from other processes.
func seedCatalog(ctx context.Context, log *logger.Logger, cfg Config, services Services) error {
	seeds := catalog.Defaults()
	if cfg.CatalogSeedFile != "" {
		fromFile, err := catalog.LoadSeedFile(cfg.CatalogSeedFile)
		if err != nil {
			return fmt.Errorf("load catalog seed file: %w", err)
		}
		seeds = fromFile
	}
	n, err := services.Topics.EnsureSeeds(ctx, seeds)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	snap := services.Catalog.Current()
	log.Info("catalog ready", "created", n, "topics", len(snap.Topics), "version", snap.Version)

	if err := services.Catalog.Subscribe(ctx); err != nil {
		return fmt.Errorf("catalog invalidation subscribe: %w", err)
	}
	return nil
}
