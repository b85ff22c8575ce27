package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context) ([]*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the clock used to date new invoices.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create stores a new invoice dated today (UTC). The id is assigned by the
// repository.
func (s *Service) Create(ctx context.Context, f Fields) (*Invoice, error) {
	inv := &Invoice{
		CustomerID: f.CustomerID,
		Amount:     f.Cents(),
		Status:     f.Status,
		Date:       today(s.now()),
	}
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

// Update rewrites customer, amount and status of an existing invoice. The
// stored date is left untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, f Fields) error {
	return s.repo.UpdateInvoice(ctx, &Invoice{
		ID:         id,
		CustomerID: f.CustomerID,
		Amount:     f.Cents(),
		Status:     f.Status,
	})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteInvoice(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx)
}

func today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
