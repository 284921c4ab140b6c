package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rl1809/potion-bottler/internal/core/domain"
	"github.com/rl1809/potion-bottler/internal/port"
)

// Mock InventoryRepository. WithinTx holds the lock for the whole unit of work
// and only publishes the staged state when fn succeeds.
type mockInventoryRepo struct {
	mu      sync.Mutex
	liquid  domain.LiquidInventory
	potions []domain.Potion
	nextID  int64

	// insertConflicts makes the next N inserts report a duplicate after
	// creating the row, as if a concurrent delivery won the race.
	insertConflicts int
}

func newMockInventoryRepo(liquid domain.LiquidInventory) *mockInventoryRepo {
	return &mockInventoryRepo{liquid: liquid, nextID: 1}
}

func (m *mockInventoryRepo) GetLiquidInventory(ctx context.Context) (domain.LiquidInventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liquid, nil
}

func (m *mockInventoryRepo) ListPotions(ctx context.Context) ([]domain.Potion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Potion(nil), m.potions...), nil
}

func (m *mockInventoryRepo) WithinTx(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	uow := &mockUnitOfWork{
		repo:    m,
		liquid:  m.liquid,
		potions: append([]domain.Potion(nil), m.potions...),
		nextID:  m.nextID,
	}
	if err := fn(uow); err != nil {
		return err
	}
	m.liquid = uow.liquid
	m.potions = uow.potions
	m.nextID = uow.nextID
	return nil
}

func (m *mockInventoryRepo) snapshot() (domain.LiquidInventory, []domain.Potion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liquid, append([]domain.Potion(nil), m.potions...)
}

type mockUnitOfWork struct {
	repo    *mockInventoryRepo
	liquid  domain.LiquidInventory
	potions []domain.Potion
	nextID  int64
}

func (u *mockUnitOfWork) FindPotion(ctx context.Context, sig domain.Signature) (*domain.Potion, error) {
	for i := range u.potions {
		if u.potions[i].Signature == sig {
			p := u.potions[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (u *mockUnitOfWork) InsertPotion(ctx context.Context, potion domain.Potion) (int64, error) {
	if u.repo.insertConflicts > 0 {
		u.repo.insertConflicts--
		u.potions = append(u.potions, domain.Potion{ID: u.nextID, Signature: potion.Signature, Name: "Rival Brew", SKU: "RIVAL_BREW", Price: potion.Price})
		u.nextID++
		return 0, port.ErrDuplicatePotion
	}
	for _, p := range u.potions {
		if p.Signature == potion.Signature {
			return 0, port.ErrDuplicatePotion
		}
	}
	potion.ID = u.nextID
	u.nextID++
	u.potions = append(u.potions, potion)
	return potion.ID, nil
}

func (u *mockUnitOfWork) IncrementPotion(ctx context.Context, id int64, quantity int) error {
	for i := range u.potions {
		if u.potions[i].ID == id {
			u.potions[i].Quantity += quantity
			return nil
		}
	}
	return nil
}

func (u *mockUnitOfWork) DecrementLiquid(ctx context.Context, ch domain.Channel, ml int) (bool, error) {
	if u.liquid[ch] >= ml {
		u.liquid[ch] -= ml
		return true, nil
	}
	return false, nil
}

// Mock CacheRepository
type mockCacheRepo struct {
	mu        sync.Mutex
	claims    map[int]string
	completed map[int]bool
	released  []int
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{claims: make(map[int]string), completed: make(map[int]bool)}
}

func (m *mockCacheRepo) ClaimDelivery(ctx context.Context, orderID int, token string) (port.ClaimState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.completed[orderID] {
		return port.ClaimCompleted, nil
	}
	if _, ok := m.claims[orderID]; ok {
		return port.ClaimInFlight, nil
	}
	m.claims[orderID] = token
	return port.ClaimAcquired, nil
}

func (m *mockCacheRepo) CompleteDelivery(ctx context.Context, orderID int, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.claims[orderID] != token {
		return errors.New("claim lost")
	}
	delete(m.claims, orderID)
	m.completed[orderID] = true
	return nil
}

func (m *mockCacheRepo) ReleaseDelivery(ctx context.Context, orderID int, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.claims[orderID] == token {
		delete(m.claims, orderID)
		m.released = append(m.released, orderID)
	}
	return nil
}

type failingRepo struct {
	err error
}

func (f failingRepo) GetLiquidInventory(ctx context.Context) (domain.LiquidInventory, error) {
	return domain.LiquidInventory{}, f.err
}

func (f failingRepo) ListPotions(ctx context.Context) ([]domain.Potion, error) {
	return nil, f.err
}

func (f failingRepo) WithinTx(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	return fn(failingUnitOfWork(f))
}

type failingUnitOfWork struct {
	err error
}

func (f failingUnitOfWork) FindPotion(ctx context.Context, sig domain.Signature) (*domain.Potion, error) {
	return nil, f.err
}

func (f failingUnitOfWork) InsertPotion(ctx context.Context, potion domain.Potion) (int64, error) {
	return 0, f.err
}

func (f failingUnitOfWork) IncrementPotion(ctx context.Context, id int64, quantity int) error {
	return f.err
}

func (f failingUnitOfWork) DecrementLiquid(ctx context.Context, ch domain.Channel, ml int) (bool, error) {
	return false, f.err
}
