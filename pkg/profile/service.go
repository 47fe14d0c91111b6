package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/synaptica-ai/trialmatch/pkg/common/logger"
	"github.com/synaptica-ai/trialmatch/pkg/common/models"
	"github.com/synaptica-ai/trialmatch/pkg/observability/metrics"
)

const (
	EventCorpus          = "corpus"
	EventProfilesRebuilt = "profiles_rebuilt"

	eventSource = "profile-builder"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

// Service owns the rebuild lifecycle: build, persist, cache, announce, swap.
// Repository, cache and publishers are optional.
type Service struct {
	builder  *Builder
	store    *Store
	repo     *Repository
	cache    *Cache
	producer Publisher
	dlq      Publisher
}

type Option func(*Service)

func WithRepository(repo *Repository) Option {
	return func(s *Service) { s.repo = repo }
}

func WithCache(cache *Cache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithPublisher(producer, dlq Publisher) Option {
	return func(s *Service) {
		s.producer = producer
		s.dlq = dlq
	}
}

func NewService(builder *Builder, store *Store, opts ...Option) *Service {
	s := &Service{builder: builder, store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Store() *Store {
	return s.store
}

// Rebuild regenerates every profile from the corpus and installs the result.
// The active catalog is left untouched if building or persisting fails.
func (s *Service) Rebuild(ctx context.Context, trials []models.RawTrial) (*Catalog, error) {
	start := time.Now()
	catalog, err := s.builder.BuildAll(ctx, trials)
	if err != nil {
		metrics.ObserveRebuild("error", 0, time.Since(start))
		return nil, fmt.Errorf("build profiles: %w", err)
	}

	if s.repo != nil {
		if err := s.repo.ReplaceAll(ctx, catalog); err != nil {
			metrics.ObserveRebuild("error", 0, time.Since(start))
			return nil, fmt.Errorf("persist profiles: %w", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Replace(ctx, catalog); err != nil {
			logger.Log.WithError(err).Warn("Failed to refresh profile cache")
		}
	}

	s.store.Swap(catalog)
	metrics.ObserveRebuild("ok", catalog.Len(), time.Since(start))
	s.announce(ctx, map[string]interface{}{
		"profiles": catalog.Len(),
		"skipped":  len(trials) - catalog.Len(),
		"built_at": time.Now().UTC().Format(time.RFC3339),
	})
	return catalog, nil
}

func (s *Service) announce(ctx context.Context, payload map[string]interface{}) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishEvent(ctx, EventProfilesRebuilt, eventSource, payload); err != nil {
		logger.Log.WithError(err).Error("failed to publish rebuild event")
		if s.dlq != nil {
			_ = s.dlq.PublishEvent(ctx, EventProfilesRebuilt, eventSource, payload)
		}
	}
}

// Load installs the persisted profiles, used at startup before any rebuild.
func (s *Service) Load(ctx context.Context) (*Catalog, error) {
	if s.repo == nil {
		return s.store.Catalog(), nil
	}
	catalog, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.store.Swap(catalog)
	metrics.ObserveCatalogSize(catalog.Len())
	return catalog, nil
}

// Lookup finds one trial's entry in the cache, the active catalog, then the
// repository, and returns ErrNotFound when none has it.
func (s *Service) Lookup(ctx context.Context, trialID string) (Entry, error) {
	if s.cache != nil {
		e, ok, err := s.cache.Get(ctx, trialID)
		switch {
		case err != nil:
			metrics.ObserveCacheLookup("error")
			logger.Log.WithError(err).WithField("trial_id", trialID).Warn("Profile cache read failed")
		case ok:
			metrics.ObserveCacheLookup("hit")
			return e, nil
		default:
			metrics.ObserveCacheLookup("miss")
		}
	}

	e, ok := s.store.Catalog().Get(trialID)
	if !ok && s.repo != nil {
		var err error
		e, err = s.repo.Get(ctx, trialID)
		if err != nil {
			return Entry{}, err
		}
		ok = true
	}
	if !ok {
		return Entry{}, ErrNotFound
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, e); err != nil {
			logger.Log.WithError(err).Debug("Failed to cache profile")
		}
	}
	return e, nil
}

// CorpusPayload is the body of a corpus event and of a rebuild request.
type CorpusPayload struct {
	Trials []models.RawTrial `json:"trials"`
}

// HandleCorpusEvent rebuilds from a corpus snapshot published on the bus.
// Other event types are acknowledged and ignored.
func (s *Service) HandleCorpusEvent(ctx context.Context, event models.Event) error {
	if event.Type != EventCorpus {
		logger.Log.WithField("event_type", event.Type).Debug("Ignoring event")
		return nil
	}
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	var payload CorpusPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode corpus event %s: %w", event.ID, err)
	}
	if payload.Trials == nil {
		return errors.New("corpus event has no trials")
	}
	_, err = s.Rebuild(ctx, payload.Trials)
	return err
}

// HandleRebuiltEvent reloads the persisted catalog after another process
// finished a rebuild. Without a repository there is nothing to reload.
func (s *Service) HandleRebuiltEvent(ctx context.Context, event models.Event) error {
	if event.Type != EventProfilesRebuilt || s.repo == nil {
		return nil
	}
	catalog, err := s.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload profiles after event %s: %w", event.ID, err)
	}
	logger.Log.WithFields(map[string]interface{}{
		"event_id": event.ID,
		"profiles": catalog.Len(),
	}).Info("Reloaded trial profiles")
	return nil
}
