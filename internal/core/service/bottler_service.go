package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rl1809/potion-bottler/internal/core/domain"
	"github.com/rl1809/potion-bottler/internal/observability"
	"github.com/rl1809/potion-bottler/internal/port"
)

var ErrDuplicateDelivery = errors.New("delivery already in progress")

const DefaultRecipeCount = 10

type Option func(*BottlerService)

// WithCache enables order id idempotency for deliveries.
func WithCache(cache port.CacheRepository) Option {
	return func(s *BottlerService) { s.cache = cache }
}

func WithRecipeCount(n int) Option {
	return func(s *BottlerService) {
		if n > 0 {
			s.recipeCount = n
		}
	}
}

func WithSampler(sampler *RecipeSampler) Option {
	return func(s *BottlerService) { s.sampler = sampler }
}

func WithPrice(price int) Option {
	return func(s *BottlerService) { s.price = price }
}

func WithNamer(namer func() string) Option {
	return func(s *BottlerService) { s.namer = namer }
}

type BottlerService struct {
	repo        port.InventoryRepository
	cache       port.CacheRepository
	sampler     *RecipeSampler
	reconciler  *DeliveryReconciler
	namer       func() string
	price       int
	recipeCount int
	logger      zerolog.Logger
}

func NewBottlerService(repo port.InventoryRepository, logger zerolog.Logger, opts ...Option) *BottlerService {
	s := &BottlerService{
		repo:        repo,
		sampler:     NewRecipeSampler(),
		namer:       GeneratePotionName,
		price:       domain.DefaultPotionPrice,
		recipeCount: DefaultRecipeCount,
		logger:      logger.With().Str("component", "bottler").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reconciler = NewDeliveryReconciler(repo, s.namer, s.price)
	return s
}

// GetBottlePlan proposes what to bottle from the liquid currently on hand. It
// never writes to the store.
func (s *BottlerService) GetBottlePlan(ctx context.Context) ([]domain.BottlePlanEntry, error) {
	inv, err := s.repo.GetLiquidInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("read liquid inventory: %w", err)
	}

	recipes := s.sampler.Sample(inv, s.recipeCount)
	plan := PlanBottles(inv, recipes)

	observability.RecordPlan(len(plan))
	s.logger.Debug().
		Ints("inventory", inv[:]).
		Int("recipes", len(recipes)).
		Int("entries", len(plan)).
		Msg("bottle plan computed")
	return plan, nil
}

// DeliverPotions reconciles a bottler delivery against the catalog and the
// liquid inventory. With a cache configured, replaying an order that already
// completed succeeds without touching the store, while an order still in
// flight elsewhere fails with ErrDuplicateDelivery.
func (s *BottlerService) DeliverPotions(ctx context.Context, orderID int, items []domain.DeliveryItem) error {
	if s.cache == nil {
		return s.deliver(ctx, orderID, items)
	}

	token := uuid.NewString()
	state, err := s.cache.ClaimDelivery(ctx, orderID, token)
	if err != nil {
		return fmt.Errorf("idempotency check failed: %w", err)
	}
	switch state {
	case port.ClaimCompleted:
		observability.RecordDelivery(observability.DeliveryResultReplay, 0)
		s.logger.Info().Int("order_id", orderID).Msg("delivery replayed")
		return nil
	case port.ClaimInFlight:
		observability.RecordDelivery(observability.DeliveryResultDuplicate, 0)
		return ErrDuplicateDelivery
	}

	if err := s.deliver(ctx, orderID, items); err != nil {
		if releaseErr := s.cache.ReleaseDelivery(context.WithoutCancel(ctx), orderID, token); releaseErr != nil {
			s.logger.Error().Err(releaseErr).Int("order_id", orderID).Msg("release delivery claim failed")
		}
		return err
	}

	// The delivery is committed; a lost marker only weakens replay detection.
	if err := s.cache.CompleteDelivery(context.WithoutCancel(ctx), orderID, token); err != nil {
		s.logger.Error().Err(err).Int("order_id", orderID).Msg("mark delivery completed failed")
	}
	return nil
}

func (s *BottlerService) deliver(ctx context.Context, orderID int, items []domain.DeliveryItem) error {
	err := s.reconciler.Reconcile(ctx, items)
	if err != nil {
		result := observability.DeliveryResultError
		var short *domain.InsufficientStockError
		if errors.As(err, &short) {
			result = observability.DeliveryResultInsufficient
		}
		observability.RecordDelivery(result, 0)
		s.logger.Warn().Err(err).Int("order_id", orderID).Int("items", len(items)).Msg("delivery rejected")
		return err
	}

	bottles := 0
	for _, item := range items {
		bottles += item.Quantity
	}
	observability.RecordDelivery(observability.DeliveryResultSuccess, bottles)
	s.logger.Info().Int("order_id", orderID).Int("items", len(items)).Int("bottles", bottles).Msg("potions delivered")
	return nil
}

func (s *BottlerService) ListCatalog(ctx context.Context) ([]domain.Potion, error) {
	potions, err := s.repo.ListPotions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return potions, nil
}
