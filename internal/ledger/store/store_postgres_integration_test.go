//go:build integration

package store

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	"givechain/pkg/domain"
	"givechain/pkg/platform/sentinel"
	"givechain/pkg/testutil/containers"
)

type LedgerPostgresSuite struct {
	suite.Suite
	ctx   context.Context
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestLedgerPostgresSuite(t *testing.T) {
	suite.Run(t, new(LedgerPostgresSuite))
}

func (s *LedgerPostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T(), "../../../migrations/0001_init.sql")
	s.store = NewPostgresStore(s.pg.Pool)
}

func (s *LedgerPostgresSuite) TearDownSuite() {
	s.pg.Pool.Close()
}

func (s *LedgerPostgresSuite) SetupTest() {
	_, err := s.pg.Pool.Exec(s.ctx, `TRUNCATE ledger_donations`)
	s.Require().NoError(err)
}

func (s *LedgerPostgresSuite) rosterOrder() []domain.Address {
	records, err := s.store.All(s.ctx)
	s.Require().NoError(err)
	donors := make([]domain.Address, len(records))
	for i, record := range records {
		donors[i] = record.Donor
	}
	return donors
}

func (s *LedgerPostgresSuite) TestRecordOverwrites() {
	s.Require().NoError(s.store.Record(s.ctx, "alice", big.NewInt(10)))
	s.Require().NoError(s.store.MarkVerified(s.ctx, "alice", "INV-1"))
	s.Require().NoError(s.store.Record(s.ctx, "alice", big.NewInt(25)))

	record, err := s.store.Get(s.ctx, "alice")
	s.Require().NoError(err)
	// A fresh donation replaces the amount and resets verification state.
	s.Equal("25", record.Amount.String())
	s.False(record.Verified)
	s.Empty(record.InvoiceID)
}

func (s *LedgerPostgresSuite) TestRosterKeepsFirstPosition() {
	s.Require().NoError(s.store.Record(s.ctx, "alice", big.NewInt(1)))
	s.Require().NoError(s.store.Record(s.ctx, "bob", big.NewInt(2)))
	s.Require().NoError(s.store.Record(s.ctx, "alice", big.NewInt(3)))

	s.Equal([]domain.Address{"alice", "bob"}, s.rosterOrder())
}

func (s *LedgerPostgresSuite) TestMarkVerifiedWithoutDonationStaysOffRoster() {
	s.Require().NoError(s.store.MarkVerified(s.ctx, "alice", "INV-1"))

	record, err := s.store.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(record.Verified)
	s.Equal("INV-1", record.InvoiceID)
	s.Zero(record.Amount.Sign())

	s.Empty(s.rosterOrder())

	// A later real donation rosters the donor at the end.
	s.Require().NoError(s.store.Record(s.ctx, "bob", big.NewInt(1)))
	s.Require().NoError(s.store.Record(s.ctx, "alice", big.NewInt(2)))
	s.Equal([]domain.Address{"bob", "alice"}, s.rosterOrder())
}

func (s *LedgerPostgresSuite) TestGetUnknownDonor() {
	_, err := s.store.Get(s.ctx, "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *LedgerPostgresSuite) TestMarkVerifiedKeepsAmount() {
	s.Require().NoError(s.store.Record(s.ctx, "alice", big.NewInt(40)))
	s.Require().NoError(s.store.MarkVerified(s.ctx, "alice", "INV-7"))

	record, err := s.store.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("40", record.Amount.String())
	s.True(record.Verified)
	s.Equal("INV-7", record.InvoiceID)

	s.Equal([]domain.Address{"alice"}, s.rosterOrder())
}
