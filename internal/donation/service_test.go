package donation

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givechain/internal/charity"
	"givechain/internal/ledger"
	ledgerstore "givechain/internal/ledger/store"
	"givechain/internal/payment"
	"givechain/internal/registry"
	registrystore "givechain/internal/registry/store"
	"givechain/internal/verifier"
	"givechain/pkg/domain"
	dErrors "givechain/pkg/domain-errors"
	"givechain/pkg/platform/events"
	"givechain/pkg/platform/tx"
)

const (
	testPayout = domain.Address("charity-payout")
	testBase   = "https://x/"
)

type fixture struct {
	svc      *Service
	registry *registry.Service
	ledger   *ledger.Service
	rail     *payment.MemoryRail
	emitter  *events.Emitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	reg, err := registry.New(registrystore.NewMemoryStore(testBase), "admin")
	require.NoError(t, err)

	led, err := ledger.New(ledgerstore.NewMemoryStore())
	require.NoError(t, err)

	rail := payment.NewMemoryRail()
	emitter := events.NewEmitter(16)

	svc, err := New(
		reg, reg, led, rail,
		verifier.NewAcceptNonEmpty(),
		tx.NoopRunner{},
		testPayout,
		charity.Descriptor{Name: "Test Charity"},
		WithEventEmitter(emitter),
	)
	require.NoError(t, err)

	return &fixture{svc: svc, registry: reg, ledger: led, rail: rail, emitter: emitter}
}

func (f *fixture) fund(donor domain.Address, amount int64) {
	f.rail.Authorize(donor)
	f.rail.Credit(donor, big.NewInt(amount))
}

func (f *fixture) drainEvent(t *testing.T) events.Event {
	t.Helper()
	select {
	case event := <-f.emitter.Outbox():
		return event
	default:
		t.Fatal("expected a published event")
		return events.Event{}
	}
}

func TestDonate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fund("alice", 100)

	tokenID, err := f.svc.Donate(ctx, "alice", big.NewInt(40))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), tokenID)

	// Rail moved the funds.
	assert.Equal(t, "60", f.rail.BalanceOf("alice").String())
	assert.Equal(t, "40", f.rail.BalanceOf(testPayout).String())

	// Ledger recorded and rostered the donor.
	donors, amounts, verified, err := f.svc.AllDonations(ctx)
	require.NoError(t, err)
	require.Len(t, donors, 1)
	assert.Equal(t, domain.Address("alice"), donors[0])
	assert.Equal(t, "40", amounts[0].String())
	assert.False(t, verified[0])

	// Donation token carries the bit-exact locator.
	locator, err := f.registry.LocatorOf(ctx, tokenID)
	require.NoError(t, err)
	assert.Equal(t, "https://x/0.json?donation=40", locator)

	owner, err := f.registry.OwnerOf(ctx, tokenID)
	require.NoError(t, err)
	assert.Equal(t, "alice", owner.String())

	// Event carries (donor, amount, tokenId).
	event := f.drainEvent(t)
	assert.Equal(t, events.KindDonationAccepted, event.Kind)
	var payload DonationAcceptedEvent
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, DonationAcceptedEvent{Donor: "alice", Amount: "40", TokenID: 0}, payload)
}

func TestDonateInvalidAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, amount := range []*big.Int{nil, big.NewInt(0), big.NewInt(-1)} {
		_, err := f.svc.Donate(ctx, "alice", amount)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	}
}

func TestDonateAtomicOnDeclinedTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// No authorization: the rail declines.

	_, err := f.svc.Donate(ctx, "alice", big.NewInt(100))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTransferFailed))

	// No token, no roster entry, no cumulative total.
	_, err = f.registry.OwnerOf(ctx, 0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTokenNotFound))

	donors, _, _, err := f.svc.AllDonations(ctx)
	require.NoError(t, err)
	assert.Empty(t, donors)

	total, err := f.svc.DonationsOf(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, total.Sign())
}

type unreachableRail struct{}

func (unreachableRail) TransferFrom(context.Context, domain.Address, domain.Address, *big.Int) (bool, error) {
	return false, errors.New("rail timeout")
}

func TestDonateRailUnavailable(t *testing.T) {
	f := newFixture(t)

	svc, err := New(
		f.registry, f.registry, f.ledger,
		unreachableRail{},
		verifier.NewAcceptNonEmpty(),
		tx.NoopRunner{},
		testPayout,
		charity.Descriptor{},
	)
	require.NoError(t, err)

	_, err = svc.Donate(context.Background(), "alice", big.NewInt(1))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTransferFailed))
}

func TestCumulativeTotalDivergesFromLatestRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fund("alice", 10)

	_, err := f.svc.Donate(ctx, "alice", big.NewInt(1))
	require.NoError(t, err)
	_, err = f.svc.Donate(ctx, "alice", big.NewInt(2))
	require.NoError(t, err)

	// Cumulative total accumulates.
	total, err := f.svc.DonationsOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "3", total.String())

	// The ledger record holds the latest donation only.
	_, amounts, _, err := f.svc.AllDonations(ctx)
	require.NoError(t, err)
	require.Len(t, amounts, 1)
	assert.Equal(t, "2", amounts[0].String())
}

func TestVerifyDonationGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("empty proof fails and mutates nothing", func(t *testing.T) {
		_, err := f.svc.VerifyDonation(ctx, "alice", nil, "INV-1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeProofVerificationFailed))

		_, err = f.registry.OwnerOf(ctx, 0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTokenNotFound))
	})

	t.Run("valid proof without prior donation still succeeds", func(t *testing.T) {
		// Documented permissive edge case: verification lands on a
		// zero-valued ledger record.
		tokenID, err := f.svc.VerifyDonation(ctx, "alice", []byte("proof"), "INV-1")
		require.NoError(t, err)
		assert.Equal(t, uint64(0), tokenID)

		indexed, err := f.svc.InvoiceTokenOf(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, tokenID, indexed)

		locator, err := f.registry.LocatorOf(ctx, tokenID)
		require.NoError(t, err)
		assert.Equal(t, "https://x/0.json?invoiceId=INV-1", locator)

		event := f.drainEvent(t)
		assert.Equal(t, events.KindDonationVerified, event.Kind)
		var payload DonationVerifiedEvent
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		assert.Equal(t, DonationVerifiedEvent{Donor: "alice", InvoiceID: "INV-1", TokenID: 0}, payload)
	})
}

func TestDonorStateMachine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fund("alice", 100)

	// NoDonation → Donated.
	_, err := f.svc.Donate(ctx, "alice", big.NewInt(10))
	require.NoError(t, err)
	f.drainEvent(t)

	// Donated → Verified.
	invoiceTokenID, err := f.svc.VerifyDonation(ctx, "alice", []byte("proof"), "INV-1")
	require.NoError(t, err)
	f.drainEvent(t)

	_, _, verified, err := f.svc.AllDonations(ctx)
	require.NoError(t, err)
	assert.True(t, verified[0])

	// Verified → Donated: a fresh donation resets verification.
	_, err = f.svc.Donate(ctx, "alice", big.NewInt(5))
	require.NoError(t, err)

	_, amounts, verified, err := f.svc.AllDonations(ctx)
	require.NoError(t, err)
	assert.False(t, verified[0])
	assert.Equal(t, "5", amounts[0].String())

	// The earlier invoice token survives the reset.
	indexed, err := f.svc.InvoiceTokenOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, invoiceTokenID, indexed)
}

func TestLaterInvoiceOverwritesIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.VerifyDonation(ctx, "alice", []byte("proof"), "INV-1")
	require.NoError(t, err)
	second, err := f.svc.VerifyDonation(ctx, "alice", []byte("proof"), "INV-2")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	indexed, err := f.svc.InvoiceTokenOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, second, indexed)

	// The first invoice token still exists with its own locator.
	locator, err := f.registry.LocatorOf(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "https://x/0.json?invoiceId=INV-1", locator)
}

func TestConcurrentDonationsSameDonor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fund("alice", 1000)

	const workers = 20
	var wg sync.WaitGroup
	ids := make(chan uint64, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := f.svc.Donate(ctx, "alice", big.NewInt(1))
			if err == nil {
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool)
	for id := range ids {
		assert.False(t, seen[id], "token id %d repeated", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)

	total, err := f.svc.DonationsOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "20", total.String())

	donors, _, _, err := f.svc.AllDonations(ctx)
	require.NoError(t, err)
	assert.Len(t, donors, 1)
}

func TestCharityInfo(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "Test Charity", f.svc.CharityInfo().Name)
}
