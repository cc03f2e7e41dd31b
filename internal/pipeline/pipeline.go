// Package pipeline orchestrates card resolution: static corpus, then cache,
// then full synthesis. Each external stage runs under its own timeout so a
// stuck dependency fails one stage instead of wedging the request.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/career-card-go/internal/constants"
	"github.com/kapu/career-card-go/internal/corpus"
	"github.com/kapu/career-card-go/internal/domain"
	"github.com/kapu/career-card-go/internal/util"
)

// CardCache is the result-cache surface the pipeline depends on. Reads never
// fail, they miss.
type CardCache interface {
	GetCard(ctx context.Context, key string) (*domain.Card, bool)
	SetCard(ctx context.Context, key string, card *domain.Card, ttl time.Duration) error
}

// ContentSynthesizer produces fully shaped card content.
type ContentSynthesizer interface {
	Synthesize(ctx context.Context, subject string, aspiration domain.AspirationInfo, bio string) (*domain.Card, error)
}

// ImageSynthesizer produces an optional portrait reference, "" on failure.
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, card *domain.Card, photoURL string) string
}

// ShareStore mints permanent share records.
type ShareStore interface {
	Create(ctx context.Context, card *domain.Card, aspiration string) (string, error)
}

type Pipeline struct {
	corpus  *corpus.Corpus
	cache   CardCache
	content ContentSynthesizer
	image   ImageSynthesizer
	shares  ShareStore
	logger  *zap.Logger
}

func New(c *corpus.Corpus, cache CardCache, content ContentSynthesizer, image ImageSynthesizer, shares ShareStore, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		corpus:  c,
		cache:   cache,
		content: content,
		image:   image,
		shares:  shares,
		logger:  logger,
	}
}

// Resolve runs the full resolution chain for a request. Force-regenerate
// skips the corpus and cache reads but never the cache write; a fresh share
// record is minted on every successful resolution, including cache and
// corpus hits.
func (p *Pipeline) Resolve(ctx context.Context, req *domain.Request) (*domain.Resolution, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	name := util.CollapseWhitespace(strings.TrimSpace(req.Name))
	key := util.CacheKey(name)
	aspiration, _ := domain.LookupAspiration(req.Aspiration)

	if !req.ForceRegenerate {
		if entry := p.lookupCorpus(name); entry != nil {
			card := entry.Card
			return p.assemble(ctx, domain.OriginCorpus, false, &card, string(aspiration.Key))
		}

		if card, ok := p.readCache(ctx, key); ok {
			p.logger.Info("Card served from cache", zap.String("key", key))
			return p.assemble(ctx, domain.OriginCache, true, card, string(aspiration.Key))
		}
	}

	card, err := p.synthesize(ctx, name, aspiration, req)
	if err != nil {
		return nil, err
	}

	p.writeCache(ctx, key, card)

	return p.assemble(ctx, domain.OriginSynthesized, false, card, string(aspiration.Key))
}

// lookupCorpus tries exact resolution first, then the ranked fuzzy
// candidates gated by the acceptance rule.
func (p *Pipeline) lookupCorpus(name string) *corpus.Entry {
	if entry := p.corpus.Exact(name); entry != nil {
		p.logger.Info("Card served from corpus", zap.String("subject", entry.Card.Name))
		return entry
	}

	for _, candidate := range p.corpus.Fuzzy(name) {
		if corpus.Acceptable(name, candidate) {
			p.logger.Info("Card served from corpus via fuzzy match",
				zap.String("query", name),
				zap.String("subject", candidate.Card.Name),
			)
			return candidate
		}
	}
	return nil
}

func (p *Pipeline) readCache(ctx context.Context, key string) (*domain.Card, bool) {
	opCtx, cancel := context.WithTimeout(ctx, constants.StageTimeouts.CacheOp)
	defer cancel()
	return p.cache.GetCard(opCtx, key)
}

// writeCache is log-and-continue: a dead cache must not fail a request that
// already has a synthesized card in hand.
func (p *Pipeline) writeCache(ctx context.Context, key string, card *domain.Card) {
	opCtx, cancel := context.WithTimeout(ctx, constants.StageTimeouts.CacheOp)
	defer cancel()

	if err := p.cache.SetCard(opCtx, key, card, constants.CacheTTL.Card); err != nil {
		p.logger.Warn("Cache write failed, continuing", zap.String("key", key), zap.Error(err))
	}
}

func (p *Pipeline) synthesize(ctx context.Context, name string, aspiration domain.AspirationInfo, req *domain.Request) (*domain.Card, error) {
	textCtx, cancelText := context.WithTimeout(ctx, constants.StageTimeouts.TextSynthesis)
	defer cancelText()

	card, err := p.content.Synthesize(textCtx, name, aspiration, req.Bio)
	if err != nil {
		return nil, err
	}

	imageCtx, cancelImage := context.WithTimeout(ctx, constants.StageTimeouts.ImageSynthesis)
	defer cancelImage()

	if ref := p.image.Synthesize(imageCtx, card, req.PhotoURL); ref != "" {
		card.ImageRef = ref
	}

	return card, nil
}

// assemble mints the share record and composes the resolution payload.
// Share persistence is a required guarantee, so its failure fails the
// request even though the card itself was produced.
func (p *Pipeline) assemble(ctx context.Context, origin domain.Origin, wasCached bool, card *domain.Card, aspirationKey string) (*domain.Resolution, error) {
	opCtx, cancel := context.WithTimeout(ctx, constants.StageTimeouts.StoreOp)
	defer cancel()

	shareID, err := p.shares.Create(opCtx, card, aspirationKey)
	if err != nil {
		return nil, err
	}

	return &domain.Resolution{
		Origin:    origin,
		WasCached: wasCached,
		ShareID:   shareID,
		Card:      card,
	}, nil
}

// WarmCorpus pre-populates the result cache with every corpus entry so the
// first lookups after a deploy hit warm keys. Failures are logged and
// skipped; warm-up is an optimization, not a correctness step.
func (p *Pipeline) WarmCorpus(ctx context.Context) {
	warmCtx, cancel := context.WithTimeout(ctx, constants.WarmupConfig.Timeout)
	defer cancel()

	entries := p.corpus.Entries()

	workers := pool.New().WithMaxGoroutines(constants.WarmupConfig.Concurrency)
	for _, entry := range entries {
		workers.Go(func() {
			card := entry.Card
			key := util.CacheKey(card.Name)
			if err := p.cache.SetCard(warmCtx, key, &card, constants.CacheTTL.Card); err != nil {
				p.logger.Warn("Corpus warm-up write failed",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		})
	}
	workers.Wait()

	p.logger.Info("Corpus warm-up complete", zap.Int("entries", len(entries)))
}
