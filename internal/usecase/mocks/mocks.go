package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/usecase"
)

// MockAccountRepository is an in-memory implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc           func(ctx context.Context, tx usecase.Tx, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, userID, id string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Tx, userID, id string) (*domain.Account, error)
	ListFunc             func(ctx context.Context, userID string) ([]*domain.Account, error)
	ReplaceFunc          func(ctx context.Context, tx usecase.Tx, account *domain.Account) error
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Tx, userID, id string, balance decimal.Decimal, updatedAt time.Time) error
	DeleteFunc           func(ctx context.Context, tx usecase.Tx, userID, id string) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Put stores a copy of account, bypassing CreateFunc.
func (m *MockAccountRepository) Put(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.accounts[account.ID] = &cp
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Tx, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.Put(account)
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, userID, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok && acc.UserID == userID {
		cp := *acc
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, userID, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, userID, id)
	}
	return m.GetByID(ctx, userID, id)
}

func (m *MockAccountRepository) List(ctx context.Context, userID string) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		if acc.UserID == userID {
			cp := *acc
			accounts = append(accounts, &cp)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (m *MockAccountRepository) Replace(ctx context.Context, tx usecase.Tx, account *domain.Account) error {
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[account.ID]; !ok || acc.UserID != account.UserID {
		return domain.ErrAccountNotFound
	}
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Tx, userID, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, userID, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok || acc.UserID != userID {
		return domain.ErrAccountNotFound
	}
	acc.Balance = balance
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, tx usecase.Tx, userID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, userID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; !ok || acc.UserID != userID {
		return domain.ErrAccountNotFound
	}
	delete(m.accounts, id)
	return nil
}

// MockTransactionRepository is an in-memory implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction

	CreateFunc  func(ctx context.Context, tx usecase.Tx, t *domain.Transaction) error
	GetByIDFunc func(ctx context.Context, userID, id string) (*domain.Transaction, error)
	ListFunc    func(ctx context.Context, userID string, filter domain.TransactionFilter) ([]*domain.Transaction, error)
	DeleteFunc  func(ctx context.Context, tx usecase.Tx, userID, id string) (*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

// Put stores a copy of t, bypassing CreateFunc.
func (m *MockTransactionRepository) Put(t *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.transactions[t.ID] = &cp
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Tx, t *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, t)
	}
	m.Put(t)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok && t.UserID == userID {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) List(ctx context.Context, userID string, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	txs := make([]*domain.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		if t.UserID != userID {
			continue
		}
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		cp := *t
		txs = append(txs, &cp)
	}
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Date.Equal(txs[j].Date) {
			return txs[i].ID > txs[j].ID
		}
		return txs[i].Date.After(txs[j].Date)
	})
	return txs, nil
}

func (m *MockTransactionRepository) Delete(ctx context.Context, tx usecase.Tx, userID, id string) (*domain.Transaction, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, userID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	delete(m.transactions, id)
	return t, nil
}

// MockStockRepository is an in-memory implementation of StockRepository.
type MockStockRepository struct {
	mu     sync.RWMutex
	stocks map[string]*domain.StockPosition

	CreateFunc      func(ctx context.Context, tx usecase.Tx, s *domain.StockPosition) error
	GetByIDFunc     func(ctx context.Context, userID, id string) (*domain.StockPosition, error)
	ListFunc        func(ctx context.Context, userID string) ([]*domain.StockPosition, error)
	ReplaceFunc     func(ctx context.Context, tx usecase.Tx, s *domain.StockPosition) error
	UpdatePriceFunc func(ctx context.Context, tx usecase.Tx, userID, id string, price decimal.Decimal, updatedAt time.Time) error
	DeleteFunc      func(ctx context.Context, tx usecase.Tx, userID, id string) error
	ListOwnersFunc  func(ctx context.Context) ([]string, error)
}

func NewMockStockRepository() *MockStockRepository {
	return &MockStockRepository{
		stocks: make(map[string]*domain.StockPosition),
	}
}

// Put stores a copy of s, bypassing CreateFunc.
func (m *MockStockRepository) Put(s *domain.StockPosition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.stocks[s.ID] = &cp
}

func (m *MockStockRepository) Create(ctx context.Context, tx usecase.Tx, s *domain.StockPosition) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, s)
	}
	m.Put(s)
	return nil
}

func (m *MockStockRepository) GetByID(ctx context.Context, userID, id string) (*domain.StockPosition, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.stocks[id]; ok && s.UserID == userID {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrStockNotFound
}

func (m *MockStockRepository) List(ctx context.Context, userID string) ([]*domain.StockPosition, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	stocks := make([]*domain.StockPosition, 0, len(m.stocks))
	for _, s := range m.stocks {
		if s.UserID == userID {
			cp := *s
			stocks = append(stocks, &cp)
		}
	}
	sort.Slice(stocks, func(i, j int) bool { return stocks[i].ID < stocks[j].ID })
	return stocks, nil
}

func (m *MockStockRepository) Replace(ctx context.Context, tx usecase.Tx, s *domain.StockPosition) error {
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, tx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.stocks[s.ID]; !ok || cur.UserID != s.UserID {
		return domain.ErrStockNotFound
	}
	cp := *s
	m.stocks[s.ID] = &cp
	return nil
}

func (m *MockStockRepository) UpdatePrice(ctx context.Context, tx usecase.Tx, userID, id string, price decimal.Decimal, updatedAt time.Time) error {
	if m.UpdatePriceFunc != nil {
		return m.UpdatePriceFunc(ctx, tx, userID, id, price, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stocks[id]
	if !ok || s.UserID != userID {
		return domain.ErrStockNotFound
	}
	s.CurrentPrice = price
	s.UpdatedAt = updatedAt
	return nil
}

func (m *MockStockRepository) Delete(ctx context.Context, tx usecase.Tx, userID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, userID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stocks[id]; !ok || s.UserID != userID {
		return domain.ErrStockNotFound
	}
	delete(m.stocks, id)
	return nil
}

func (m *MockStockRepository) ListOwners(ctx context.Context) ([]string, error) {
	if m.ListOwnersFunc != nil {
		return m.ListOwnersFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var owners []string
	for _, s := range m.stocks {
		if !seen[s.UserID] {
			seen[s.UserID] = true
			owners = append(owners, s.UserID)
		}
	}
	sort.Strings(owners)
	return owners, nil
}

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	MarkSeededFunc func(ctx context.Context, tx usecase.Tx, id string, at time.Time) (bool, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) MarkSeeded(ctx context.Context, tx usecase.Tx, id string, at time.Time) (bool, error) {
	if m.MarkSeededFunc != nil {
		return m.MarkSeededFunc(ctx, tx, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	if u.Seeded {
		return false, nil
	}
	u.Seeded = true
	u.UpdatedAt = at
	return true, nil
}

// MockOutboxRepository is an in-memory implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc         func(ctx context.Context, tx usecase.Tx, event *domain.OutboxEvent) error
	GetUnpublishedFunc func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc  func(ctx context.Context, id string, publishedAt time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns every stored event in insertion order.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Tx, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Tx, error)

	mu      sync.Mutex
	begun   int
	commits int
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Tx, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	m.begun++
	m.mu.Unlock()
	return &MockTx{CommitFunc: func(context.Context) error {
		m.mu.Lock()
		m.commits++
		m.mu.Unlock()
		return nil
	}}, nil
}

// Commits returns the number of transactions committed through the default Begin.
func (m *MockTransactionManager) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// MockTx is a mock implementation of Tx.
type MockTx struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTx) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTx) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Value returns the stored value for key.
func (m *MockIdempotencyStore) Value(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// NewStore wires the in-memory repositories into a usecase.Store.
func NewStore() (usecase.Store, *Repositories) {
	r := &Repositories{
		TxManager:    NewMockTransactionManager(),
		Accounts:     NewMockAccountRepository(),
		Transactions: NewMockTransactionRepository(),
		Stocks:       NewMockStockRepository(),
		Users:        NewMockUserRepository(),
		Outbox:       NewMockOutboxRepository(),
		IDGen:        NewMockIDGenerator(),
	}
	return usecase.Store{
		TxManager:    r.TxManager,
		Accounts:     r.Accounts,
		Transactions: r.Transactions,
		Stocks:       r.Stocks,
		Users:        r.Users,
		Outbox:       r.Outbox,
		IDGen:        r.IDGen,
	}, r
}

// Repositories exposes the concrete mocks behind a Store built by NewStore.
type Repositories struct {
	TxManager    *MockTransactionManager
	Accounts     *MockAccountRepository
	Transactions *MockTransactionRepository
	Stocks       *MockStockRepository
	Users        *MockUserRepository
	Outbox       *MockOutboxRepository
	IDGen        *MockIDGenerator
}
