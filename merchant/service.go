package merchant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alovak/brcode-playground/internal/amount"
	"github.com/alovak/brcode-playground/internal/brcode"
	"github.com/alovak/brcode-playground/internal/datefmt"
	"github.com/alovak/brcode-playground/internal/events"
	"github.com/alovak/brcode-playground/internal/qrcode"
	"github.com/alovak/brcode-playground/merchant/models"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

var (
	ErrProfileIncomplete = errors.New("profile is incomplete: pix key, recipient name and city are required")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// Publisher receives an event for every generated payment.
type Publisher interface {
	Publish(ctx context.Context, e events.PaymentGenerated) error
}

const publishTimeout = 5 * time.Second

type Service struct {
	repo      Storage
	cfg       *Config
	qr        *qrcode.Generator
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Storage, cfg *Config) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Service{
		repo:   repo,
		cfg:    cfg,
		qr:     qrcode.NewGenerator(cfg.QR.Size),
		logger: slog.Default(),
		now:    time.Now,
	}
}

// WithPublisher makes Generate announce stored payments through p. Publish
// failures are logged with logger and never fail the generation.
func (s *Service) WithPublisher(p Publisher, logger *slog.Logger) *Service {
	s.publisher = p
	if logger != nil {
		s.logger = logger
	}
	return s
}

// GetProfile returns the saved profile, or an empty one when none was saved.
func (s *Service) GetProfile(ctx context.Context) (*models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx)
	if errors.Is(err, ErrNotFound) {
		return &models.Profile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding profile: %w", err)
	}
	return profile, nil
}

func (s *Service) SaveProfile(ctx context.Context, req models.Profile) (*models.Profile, error) {
	profile := req.Trimmed()
	if !profile.Complete() {
		return nil, ErrProfileIncomplete
	}
	// reject keys that cannot fit the merchant account template
	if _, err := brcode.Build(profile.ToBR(), "0.01"); err != nil {
		return nil, fmt.Errorf("validating profile: %w", err)
	}

	if err := s.repo.SaveProfile(ctx, &profile); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	return &profile, nil
}

// Generate builds the BR Code for the requested amount with the saved
// profile and records it in the history.
func (s *Service) Generate(ctx context.Context, req models.CreatePayload) (*models.Transaction, error) {
	profile, err := s.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	if !profile.Complete() {
		return nil, ErrProfileIncomplete
	}

	parse := amount.Parse
	if req.Cents {
		parse = amount.FromDigits
	}
	value, err := parse(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}

	code, err := brcode.Build(profile.Trimmed().ToBR(), value)
	if err != nil {
		return nil, fmt.Errorf("building br code: %w", err)
	}

	transaction := &models.Transaction{
		ID:     newTransactionID(),
		Amount: value,
		Date:   datefmt.ISO(s.now()),
		BRCode: code,
	}
	if err := s.repo.AddTransaction(ctx, transaction); err != nil {
		return nil, fmt.Errorf("storing transaction: %w", err)
	}

	s.publish(ctx, transaction)

	return transaction, nil
}

func (s *Service) publish(ctx context.Context, t *models.Transaction) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := s.publisher.Publish(ctx, events.PaymentGenerated{
		ID:     t.ID,
		Amount: t.Amount,
		Date:   t.Date,
		BRCode: t.BRCode,
	})
	if err != nil {
		s.logger.Warn("publishing payment event", slog.String("id", t.ID), slog.Any("err", err))
	}
}

// ListTransactions returns the newest transactions first. A limit of zero
// or less uses the configured history limit.
func (s *Service) ListTransactions(ctx context.Context, limit int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = s.cfg.Storage.HistoryLimit
	}
	transactions, err := s.repo.ListTransactions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return transactions, nil
}

func (s *Service) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	transaction, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding transaction: %w", err)
	}
	return transaction, nil
}

// TransactionQR renders the stored BR Code of a transaction as PNG.
func (s *Service) TransactionQR(ctx context.Context, id string) ([]byte, error) {
	transaction, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.qr.PNG(transaction.BRCode)
}

// Verify checks the checksum of a BR Code and returns its decoded fields.
func (s *Service) Verify(code string) (*brcode.Payload, error) {
	return brcode.Parse(strings.TrimSpace(code))
}

// v7 ids sort by creation time.
func newTransactionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
