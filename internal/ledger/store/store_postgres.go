package store

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"givechain/internal/ledger/models"
	"givechain/pkg/domain"
	"givechain/pkg/platform/sentinel"
	"givechain/pkg/platform/tx"
)

// PostgresStore persists donation records in PostgreSQL. Roster order is a
// sequence-assigned position set on the donor's first real donation; a donor
// touched only by MarkVerified has a row but no roster position.
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

func (s *PostgresStore) Record(ctx context.Context, donor domain.Address, amount *big.Int) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO ledger_donations (donor, amount, verified, invoice_id, in_roster, roster_pos)
		 VALUES ($1, $2::numeric, FALSE, NULL, TRUE, nextval('ledger_roster_pos'))
		 ON CONFLICT (donor) DO UPDATE SET
		   amount     = EXCLUDED.amount,
		   verified   = FALSE,
		   invoice_id = NULL,
		   in_roster  = TRUE,
		   roster_pos = COALESCE(ledger_donations.roster_pos, EXCLUDED.roster_pos)`,
		donor.String(), amount.String(),
	)
	if err != nil {
		return fmt.Errorf("record donation for %s: %w", donor, err)
	}
	return nil
}

func (s *PostgresStore) MarkVerified(ctx context.Context, donor domain.Address, invoiceID string) error {
	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO ledger_donations (donor, amount, verified, invoice_id, in_roster, roster_pos)
		 VALUES ($1, 0, TRUE, $2, FALSE, NULL)
		 ON CONFLICT (donor) DO UPDATE SET
		   verified   = TRUE,
		   invoice_id = EXCLUDED.invoice_id`,
		donor.String(), invoiceID,
	)
	if err != nil {
		return fmt.Errorf("mark verified for %s: %w", donor, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, donor domain.Address) (*models.DonationRecord, error) {
	var (
		amount    string
		verified  bool
		invoiceID *string
	)
	err := s.q(ctx).QueryRow(ctx,
		`SELECT amount::text, verified, invoice_id FROM ledger_donations WHERE donor = $1`,
		donor.String(),
	).Scan(&amount, &verified, &invoiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get donation record for %s: %w", donor, err)
	}
	return buildRecord(donor, amount, verified, invoiceID)
}

func (s *PostgresStore) All(ctx context.Context) ([]models.DonationRecord, error) {
	rows, err := s.q(ctx).Query(ctx,
		`SELECT donor, amount::text, verified, invoice_id
		 FROM ledger_donations WHERE in_roster ORDER BY roster_pos`,
	)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var out []models.DonationRecord
	for rows.Next() {
		var (
			donor     string
			amount    string
			verified  bool
			invoiceID *string
		)
		if err := rows.Scan(&donor, &amount, &verified, &invoiceID); err != nil {
			return nil, fmt.Errorf("scan donation row: %w", err)
		}
		record, err := buildRecord(domain.Address(donor), amount, verified, invoiceID)
		if err != nil {
			return nil, err
		}
		out = append(out, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return out, nil
}

func buildRecord(donor domain.Address, amount string, verified bool, invoiceID *string) (*models.DonationRecord, error) {
	parsed, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("donation record for %s: malformed amount %q", donor, amount)
	}
	record := &models.DonationRecord{
		Donor:    donor,
		Amount:   parsed,
		Verified: verified,
	}
	if invoiceID != nil {
		record.InvoiceID = *invoiceID
	}
	return record, nil
}
