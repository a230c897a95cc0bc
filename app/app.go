// Package app wires config into the concrete store, generator, storage and
// event bus implementations shared by every command.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"marlang/agent"
	"marlang/config"
	"marlang/db"
	"marlang/eventbus"
	"marlang/events"
	"marlang/feeder"
	"marlang/firestoredb"
	"marlang/generator"
	"marlang/memstore"
	"marlang/quota"
	"marlang/repositories"
	"marlang/storage"
)

// App holds the long-lived resources of one process.
type App struct {
	Config config.AppConfig
	Store  repositories.Store
	Images storage.Reader
	Runner *agent.Runner

	closers []func(ctx context.Context) error
}

// OpenStore connects the document store selected by store.driver.
func OpenStore(ctx context.Context, cfg config.AppConfig) (repositories.Store, error) {
	switch cfg.Store.Driver {
	case "mongo":
		if err := db.Init(ctx, cfg); err != nil {
			return nil, fmt.Errorf("mongo init: %w", err)
		}
		return repositories.NewMongoStore(db.Client(), db.Database()), nil
	case "firestore":
		store, err := firestoredb.NewStore(ctx, cfg.FirestoreProject())
		if err != nil {
			return nil, fmt.Errorf("firestore init: %w", err)
		}
		return store, nil
	case "memory":
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// New builds the store, generator, image storage and event bus, and the
// runner on top of them.
func New(ctx context.Context, cfg config.AppConfig) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Store: store}
	a.closers = append(a.closers, store.Close)

	if err := a.build(ctx); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	apiKey := cfg.LLMAPIKey()
	if apiKey == "" {
		return fmt.Errorf("%s is not set", cfg.LLM.APIKeyEnv)
	}
	gen, err := generator.NewGeminiClient(ctx, apiKey, cfg.LLM.TextModel, cfg.LLM.ImageModel)
	if err != nil {
		return fmt.Errorf("gemini client: %w", err)
	}

	blobs, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	a.Images = blobs

	bus, err := openEventBus(ctx, cfg.EventBus)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func(context.Context) error { bus.Close(); return nil })

	var headlines agent.HeadlineSource
	if len(cfg.Inspiration.Feeds) > 0 {
		headlines = feeder.NewHeadlines(cfg.Inspiration)
	}

	a.Runner = agent.NewRunner(agent.Deps{
		Agents:    a.Store,
		Posts:     a.Store,
		Text:      gen,
		Images:    gen,
		Storage:   blobs,
		Pacer:     quota.NewLimiter(cfg.Agent.ImageQuota),
		Headlines: headlines,
		Notifier:  events.NewNotifier(bus, cfg.EventBus.Topic),
		AILogs:    a.Store,
	}, agent.Options{
		AgentID:       cfg.Agent.ID,
		Cooldown:      cfg.Agent.Cooldown,
		ImageDelay:    cfg.Agent.ImageDelay,
		NotifyTimeout: cfg.Agent.NotifyTimeout,
		TextModel:     cfg.LLM.TextModel,
		ImageModel:    cfg.LLM.ImageModel,
	})
	return nil
}

type blobStore interface {
	agent.ObjectStorage
	storage.Reader
}

func (a *App) openStorage(ctx context.Context) (blobStore, error) {
	sc := a.Config.Storage
	switch sc.Driver {
	case "gridfs":
		if a.Config.Store.Driver != "mongo" {
			return nil, errors.New("gridfs storage requires the mongo store driver")
		}
		return storage.NewGridFSStorage(db.Database(), sc.Prefix, sc.ObjectBaseURL()), nil
	case "gcs":
		s, err := storage.NewGCSStorage(ctx, sc.Bucket, sc.Prefix, sc.ObjectBaseURL())
		if err != nil {
			return nil, fmt.Errorf("gcs storage: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return s.Close() })
		return s, nil
	case "memory":
		return storage.NewMemoryStorage(sc.ObjectBaseURL()), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
}

func openEventBus(ctx context.Context, ec config.EventBusConfig) (eventbus.EventBus, error) {
	switch ec.Driver {
	case "kafka":
		brokers, err := eventbus.GetBrokers()
		if err != nil {
			return nil, err
		}
		bus, err := eventbus.NewKafkaEventBus(brokers)
		if err != nil {
			return nil, err
		}
		if err := bus.EnsureTopic(ctx, ec.Topic, 1); err != nil {
			config.Logger.Warnf("kafka topic %s not ensured: %v", ec.Topic, err)
		}
		return bus, nil
	case "nats":
		bus, err := eventbus.NewNATSEventBus(eventbus.GetNATSURL())
		if err != nil {
			return nil, err
		}
		return bus, nil
	case "none", "":
		return eventbus.NoopEventBus{}, nil
	default:
		return nil, fmt.Errorf("unknown eventbus driver %q", ec.Driver)
	}
}

// Health pings the backing database when it supports it.
func (a *App) Health(ctx context.Context) error {
	if a.Config.Store.Driver == "mongo" && db.Client() != nil {
		return db.Client().Ping(ctx, readpref.Primary())
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
