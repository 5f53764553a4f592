package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/earnstack/backend/internal/models"
)

// ErrInsufficientBalance is returned when a debit would drive the balance negative.
var ErrInsufficientBalance = errors.New("insufficient coin balance")

// ErrNotFound is returned when the referenced user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrInvalidAmount is returned for zero or negative credit/debit amounts.
var ErrInvalidAmount = errors.New("amount must be positive")

// Store is the minimal persistence interface the ledger needs.
type Store interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	SetRole(ctx context.Context, email, role string) error
	Delete(ctx context.Context, email string) error
	CreditTx(ctx context.Context, tx pgx.Tx, email string, amount int) (int, error)
	DebitTx(ctx context.Context, tx pgx.Tx, email string, amount int) (int, error)
}

// RegisterParams carries the profile fields accepted at registration.
type RegisterParams struct {
	Email        string
	Name         string
	Role         string
	AvatarURL    string
	PasswordHash string
}

// Service is the account ledger. It is the only component allowed to mutate
// coin balances; every other workflow calls in here.
type Service interface {
	Register(ctx context.Context, p RegisterParams) (u *models.User, created bool, err error)
	GetUser(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	SetRole(ctx context.Context, email, role string) error
	DeleteUser(ctx context.Context, email string) error
	Credit(ctx context.Context, tx pgx.Tx, email string, amount int) error
	Debit(ctx context.Context, tx pgx.Tx, email string, amount int) error
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

var _ Service = (*service)(nil)

// Register creates the user with a role-dependent starting balance. It is
// idempotent: re-registering an existing email returns the stored record
// unchanged with created=false.
func (s *service) Register(ctx context.Context, p RegisterParams) (*models.User, bool, error) {
	existing, err := s.store.GetByEmail(ctx, p.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	coins := models.StartingCoinsDefault
	if p.Role == models.RoleBuyer {
		coins = models.StartingCoinsBuyer
	}
	u := &models.User{
		Email:        p.Email,
		Name:         p.Name,
		Role:         p.Role,
		Coin:         coins,
		AvatarURL:    p.AvatarURL,
		PasswordHash: p.PasswordHash,
	}
	if err := s.store.Create(ctx, u); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Lost a registration race; the winner's record is authoritative.
			if existing, gerr := s.store.GetByEmail(ctx, p.Email); gerr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	return u, true, nil
}

func (s *service) GetUser(ctx context.Context, email string) (*models.User, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *service) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.List(ctx)
}

func (s *service) SetRole(ctx context.Context, email, role string) error {
	err := s.store.SetRole(ctx, email, role)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *service) DeleteUser(ctx context.Context, email string) error {
	err := s.store.Delete(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Credit increases the balance inside the caller's transaction.
func (s *service) Credit(ctx context.Context, tx pgx.Tx, email string, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	_, err := s.store.CreditTx(ctx, tx, email, amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Debit decreases the balance inside the caller's transaction, failing with
// ErrInsufficientBalance when the current balance cannot cover the amount.
// There is no partial debit.
func (s *service) Debit(ctx context.Context, tx pgx.Tx, email string, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	_, err := s.store.DebitTx(ctx, tx, email, amount)
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		u, gerr := s.store.GetByEmail(ctx, email)
		if gerr != nil {
			return gerr
		}
		if u == nil {
			return ErrNotFound
		}
		return ErrInsufficientBalance
	}
	return err
}
