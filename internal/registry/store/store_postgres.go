package store

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"givechain/internal/registry/models"
	"givechain/pkg/domain"
	"givechain/pkg/platform/sentinel"
	"givechain/pkg/platform/tx"
)

// PostgresStore persists registry state in PostgreSQL. Writes issued inside a
// unit of work pick the transaction up from context, so a mint and its
// surrounding ledger writes commit together.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.pool
}

// MintToken allocates the next ID from the singleton counter row and inserts
// the token under it. The row update serializes concurrent mints.
func (s *PostgresStore) MintToken(ctx context.Context, owner domain.Address, suffix string, mintedAt time.Time) (models.TokenID, error) {
	q := s.q(ctx)
	var id int64
	err := q.QueryRow(ctx,
		`UPDATE registry_counter SET next_id = next_id + 1 WHERE singleton = 0 RETURNING next_id - 1`,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("allocate token id: %w", err)
	}
	_, err = q.Exec(ctx,
		`INSERT INTO registry_tokens (id, owner, suffix, minted_at) VALUES ($1, $2, $3, $4)`,
		id, owner.String(), suffix, mintedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert token %d: %w", id, err)
	}
	return models.TokenID(id), nil
}

func (s *PostgresStore) GetToken(ctx context.Context, id models.TokenID) (*models.Token, error) {
	var (
		owner    string
		suffix   string
		mintedAt time.Time
	)
	err := s.q(ctx).QueryRow(ctx,
		`SELECT owner, suffix, minted_at FROM registry_tokens WHERE id = $1`,
		int64(id),
	).Scan(&owner, &suffix, &mintedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get token %d: %w", id, err)
	}
	return &models.Token{
		ID:       id,
		Owner:    domain.Address(owner),
		Suffix:   suffix,
		MintedAt: mintedAt,
	}, nil
}

func (s *PostgresStore) AddDonation(ctx context.Context, donor domain.Address, amount *big.Int) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO registry_totals (donor, total) VALUES ($1, $2::numeric)
		 ON CONFLICT (donor) DO UPDATE SET total = registry_totals.total + EXCLUDED.total`,
		donor.String(), amount.String(),
	)
	if err != nil {
		return fmt.Errorf("add donation for %s: %w", donor, err)
	}
	return nil
}

func (s *PostgresStore) DonationsOf(ctx context.Context, donor domain.Address) (*big.Int, error) {
	var total string
	err := s.q(ctx).QueryRow(ctx,
		`SELECT total::text FROM registry_totals WHERE donor = $1`,
		donor.String(),
	).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return new(big.Int), nil
		}
		return nil, fmt.Errorf("donations of %s: %w", donor, err)
	}
	parsed, ok := new(big.Int).SetString(total, 10)
	if !ok {
		return nil, fmt.Errorf("donations of %s: malformed total %q", donor, total)
	}
	return parsed, nil
}

func (s *PostgresStore) SetInvoiceToken(ctx context.Context, donor domain.Address, id models.TokenID) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO registry_invoice_index (donor, token_id) VALUES ($1, $2)
		 ON CONFLICT (donor) DO UPDATE SET token_id = EXCLUDED.token_id`,
		donor.String(), int64(id),
	)
	if err != nil {
		return fmt.Errorf("set invoice token for %s: %w", donor, err)
	}
	return nil
}

func (s *PostgresStore) InvoiceTokenOf(ctx context.Context, donor domain.Address) (models.TokenID, error) {
	var id int64
	err := s.q(ctx).QueryRow(ctx,
		`SELECT token_id FROM registry_invoice_index WHERE donor = $1`,
		donor.String(),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("invoice token of %s: %w", donor, err)
	}
	return models.TokenID(id), nil
}

func (s *PostgresStore) BaseLocator(ctx context.Context) (string, error) {
	var base string
	err := s.q(ctx).QueryRow(ctx,
		`SELECT value FROM registry_settings WHERE key = 'base_locator'`,
	).Scan(&base)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("get base locator: %w", err)
	}
	return base, nil
}

func (s *PostgresStore) SetBaseLocator(ctx context.Context, base string) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO registry_settings (key, value) VALUES ('base_locator', $1)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		base,
	)
	if err != nil {
		return fmt.Errorf("set base locator: %w", err)
	}
	return nil
}
