package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/internal/repository"
)

// fakeTx is a no-op pgx.Tx that records commit/rollback calls.
type fakeTx struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                               { return nil }

// MockSlotRepository is a mock implementation of SlotRepository
type MockSlotRepository struct {
	CreateFunc           func(ctx context.Context, slot *domain.Slot) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Slot, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx pgx.Tx, id string) (*domain.Slot, error)
	HasOverlapFunc       func(ctx context.Context, providerID string, date, startAt, endAt time.Time, excludeID string) (bool, error)
	UpdateTxFunc         func(ctx context.Context, tx pgx.Tx, slot *domain.Slot) error
	DeleteTxFunc         func(ctx context.Context, tx pgx.Tx, id string) error
	FindBookableFunc     func(ctx context.Context, providerID string, date time.Time) ([]*domain.Slot, error)
	GetByProviderIDFunc  func(ctx context.Context, providerID string, from, to time.Time) ([]*domain.Slot, error)
	BeginTxFunc          func(ctx context.Context) (pgx.Tx, error)
}

func (m *MockSlotRepository) Create(ctx context.Context, slot *domain.Slot) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, slot)
	}
	return nil
}

func (m *MockSlotRepository) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrSlotNotFound
}

func (m *MockSlotRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Slot, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return nil, domain.ErrSlotNotFound
}

func (m *MockSlotRepository) HasOverlap(ctx context.Context, providerID string, date, startAt, endAt time.Time, excludeID string) (bool, error) {
	if m.HasOverlapFunc != nil {
		return m.HasOverlapFunc(ctx, providerID, date, startAt, endAt, excludeID)
	}
	return false, nil
}

func (m *MockSlotRepository) UpdateTx(ctx context.Context, tx pgx.Tx, slot *domain.Slot) error {
	if m.UpdateTxFunc != nil {
		return m.UpdateTxFunc(ctx, tx, slot)
	}
	return nil
}

func (m *MockSlotRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id string) error {
	if m.DeleteTxFunc != nil {
		return m.DeleteTxFunc(ctx, tx, id)
	}
	return nil
}

func (m *MockSlotRepository) FindBookable(ctx context.Context, providerID string, date time.Time) ([]*domain.Slot, error) {
	if m.FindBookableFunc != nil {
		return m.FindBookableFunc(ctx, providerID, date)
	}
	return []*domain.Slot{}, nil
}

func (m *MockSlotRepository) GetByProviderID(ctx context.Context, providerID string, from, to time.Time) ([]*domain.Slot, error) {
	if m.GetByProviderIDFunc != nil {
		return m.GetByProviderIDFunc(ctx, providerID, from, to)
	}
	return []*domain.Slot{}, nil
}

func (m *MockSlotRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	if m.BeginTxFunc != nil {
		return m.BeginTxFunc(ctx)
	}
	return &fakeTx{}, nil
}

// MockBookingRepository is a mock implementation of BookingRepository
type MockBookingRepository struct {
	CreateTxFunc         func(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Booking, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx pgx.Tx, id string) (*domain.Booking, error)
	UpdateTxFunc         func(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error
	GetByCustomerIDFunc  func(ctx context.Context, customerID string, limit, offset int) ([]*domain.Booking, error)
	GetByProviderIDFunc  func(ctx context.Context, providerID string, limit, offset int) ([]*domain.Booking, error)
	BeginTxFunc          func(ctx context.Context) (pgx.Tx, error)
}

func (m *MockBookingRepository) CreateTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, booking)
	}
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Booking, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingRepository) UpdateTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	if m.UpdateTxFunc != nil {
		return m.UpdateTxFunc(ctx, tx, booking)
	}
	return nil
}

func (m *MockBookingRepository) GetByCustomerID(ctx context.Context, customerID string, limit, offset int) ([]*domain.Booking, error) {
	if m.GetByCustomerIDFunc != nil {
		return m.GetByCustomerIDFunc(ctx, customerID, limit, offset)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) GetByProviderID(ctx context.Context, providerID string, limit, offset int) ([]*domain.Booking, error) {
	if m.GetByProviderIDFunc != nil {
		return m.GetByProviderIDFunc(ctx, providerID, limit, offset)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	if m.BeginTxFunc != nil {
		return m.BeginTxFunc(ctx)
	}
	return &fakeTx{}, nil
}

// MockCatalogRepository is a mock implementation of CatalogRepository
type MockCatalogRepository struct {
	GetServiceFunc func(ctx context.Context, id string) (*domain.CatalogService, error)
}

func (m *MockCatalogRepository) GetService(ctx context.Context, id string) (*domain.CatalogService, error) {
	if m.GetServiceFunc != nil {
		return m.GetServiceFunc(ctx, id)
	}
	return nil, domain.ErrServiceNotFound
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	CreateTxFunc       func(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error
	GetByBookingIDFunc func(ctx context.Context, bookingID string) ([]*domain.AuditEntry, error)

	Entries []*domain.AuditEntry
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, entry)
	}
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockAuditRepository) GetByBookingID(ctx context.Context, bookingID string) ([]*domain.AuditEntry, error) {
	if m.GetByBookingIDFunc != nil {
		return m.GetByBookingIDFunc(ctx, bookingID)
	}
	return m.Entries, nil
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	PublishFunc func(ctx context.Context, tx pgx.Tx, eventType domain.BookingEventType, booking *domain.Booking, correlationID string) error

	Published []domain.BookingEventType
}

func (m *MockEventPublisher) Publish(ctx context.Context, tx pgx.Tx, eventType domain.BookingEventType, booking *domain.Booking, correlationID string) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, tx, eventType, booking, correlationID)
	}
	m.Published = append(m.Published, eventType)
	return nil
}

// Ensure mocks satisfy the interfaces
var (
	_ repository.SlotRepository    = (*MockSlotRepository)(nil)
	_ repository.BookingRepository = (*MockBookingRepository)(nil)
	_ repository.CatalogRepository = (*MockCatalogRepository)(nil)
	_ repository.AuditRepository   = (*MockAuditRepository)(nil)
	_ EventPublisher               = (*MockEventPublisher)(nil)
	_ pgx.Tx                       = (*fakeTx)(nil)
)
