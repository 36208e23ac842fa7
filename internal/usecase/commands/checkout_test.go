//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"upi-checkout/internal/domain/paylock"
	"upi-checkout/internal/pkg/clock"
	"upi-checkout/internal/pkg/config"
	"upi-checkout/internal/pkg/errs"
	"upi-checkout/internal/usecase/commands"
	"upi-checkout/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var checkoutBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type checkoutFixture struct {
	store    *memStore
	clock    *clock.MockClock
	commands commands.CheckoutCommands
}

func newCheckoutFixture() *checkoutFixture {
	store := newMemStore()
	clk := clock.NewMockClock(checkoutBase)
	cfg := config.NewTestConfig()
	return &checkoutFixture{
		store:    store,
		clock:    clk,
		commands: commands.NewCheckoutCommands(fakeUoW{store}, lockRepoFake{store}, clk, cfg),
	}
}

func TestRequestPayableAmount(t *testing.T) {
	t.Run("free amount passes through with zero surcharge", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := f.store.addBuyer(shared.BuyerSnapshot{Name: "Asha"})
		productID := f.store.addProduct(shared.ProductSnapshot{Name: "Coin Pack", BasePricePaise: 40000})

		result, err := f.commands.RequestPayableAmount(context.Background(), buyerID, productID)
		require.NoError(t, err)

		assert.Equal(t, int64(40000), result.AmountPaise)
		assert.Zero(t, result.SurchargePaise)
		assert.Equal(t, checkoutBase.Add(90*time.Second), result.ExpiresAt)

		lock, err := f.store.LockByID(context.Background(), result.LockID)
		require.NoError(t, err)
		assert.Equal(t, paylock.StatusActive.String(), lock.Status)
		assert.Equal(t, buyerID, lock.BuyerID)
	})

	t.Run("held amounts earn a paisa surcharge", func(t *testing.T) {
		f := newCheckoutFixture()
		productID := f.store.addProduct(shared.ProductSnapshot{Name: "Coin Pack", BasePricePaise: 40000})

		var amounts []int64
		for i := 0; i < 3; i++ {
			buyerID := f.store.addBuyer(shared.BuyerSnapshot{})
			result, err := f.commands.RequestPayableAmount(context.Background(), buyerID, productID)
			require.NoError(t, err)
			amounts = append(amounts, result.AmountPaise)
		}

		assert.Equal(t, []int64{40000, 40001, 40002}, amounts)
	})

	t.Run("coin discount caps at half the base price", func(t *testing.T) {
		f := newCheckoutFixture()
		productID := f.store.addProduct(shared.ProductSnapshot{
			Name: "Coin Pack", BasePricePaise: 40000, CoinApplicable: true,
		})

		rich := f.store.addBuyer(shared.BuyerSnapshot{CoinBalancePaise: 100000})
		result, err := f.commands.RequestPayableAmount(context.Background(), rich, productID)
		require.NoError(t, err)
		assert.Equal(t, int64(20000), result.AmountPaise)

		modest := f.store.addBuyer(shared.BuyerSnapshot{CoinBalancePaise: 5000})
		result, err = f.commands.RequestPayableAmount(context.Background(), modest, productID)
		require.NoError(t, err)
		assert.Equal(t, int64(35000), result.AmountPaise)
	})

	t.Run("coins ignored when product opts out", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := f.store.addBuyer(shared.BuyerSnapshot{CoinBalancePaise: 100000})
		productID := f.store.addProduct(shared.ProductSnapshot{Name: "Gift Card", BasePricePaise: 40000})

		result, err := f.commands.RequestPayableAmount(context.Background(), buyerID, productID)
		require.NoError(t, err)
		assert.Equal(t, int64(40000), result.AmountPaise)
	})

	t.Run("expired lock inside grace still blocks its amount", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := f.store.addBuyer(shared.BuyerSnapshot{})
		productID := f.store.addProduct(shared.ProductSnapshot{Name: "Coin Pack", BasePricePaise: 40000})

		f.store.addLock(shared.LockSnapshot{
			BuyerID: uuid.New(), ProductID: productID, AmountPaise: 40000,
			Status:    paylock.StatusExpired.String(),
			CreatedAt: checkoutBase.Add(-2 * time.Minute),
			ExpiresAt: checkoutBase.Add(-10 * time.Second),
		})

		result, err := f.commands.RequestPayableAmount(context.Background(), buyerID, productID)
		require.NoError(t, err)
		assert.Equal(t, int64(40001), result.AmountPaise)
	})

	t.Run("expired lock beyond grace frees its amount", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := f.store.addBuyer(shared.BuyerSnapshot{})
		productID := f.store.addProduct(shared.ProductSnapshot{Name: "Coin Pack", BasePricePaise: 40000})

		f.store.addLock(shared.LockSnapshot{
			BuyerID: uuid.New(), ProductID: productID, AmountPaise: 40000,
			Status:    paylock.StatusExpired.String(),
			CreatedAt: checkoutBase.Add(-5 * time.Minute),
			ExpiresAt: checkoutBase.Add(-31 * time.Second),
		})

		result, err := f.commands.RequestPayableAmount(context.Background(), buyerID, productID)
		require.NoError(t, err)
		assert.Equal(t, int64(40000), result.AmountPaise)
	})

	t.Run("stale active lock is swept before allocation", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := f.store.addBuyer(shared.BuyerSnapshot{})
		productID := f.store.addProduct(shared.ProductSnapshot{Name: "Coin Pack", BasePricePaise: 40000})

		staleID := f.store.addLock(shared.LockSnapshot{
			BuyerID: uuid.New(), ProductID: productID, AmountPaise: 40000,
			Status:    paylock.StatusActive.String(),
			CreatedAt: checkoutBase.Add(-10 * time.Minute),
			ExpiresAt: checkoutBase.Add(-5 * time.Minute),
		})

		result, err := f.commands.RequestPayableAmount(context.Background(), buyerID, productID)
		require.NoError(t, err)
		// the stale lock lapsed long past grace, so the base amount is free
		assert.Equal(t, int64(40000), result.AmountPaise)

		swept, err := f.store.LockByID(context.Background(), staleID)
		require.NoError(t, err)
		assert.Equal(t, paylock.StatusExpired.String(), swept.Status)
	})

	t.Run("lost creation race retries with a fresh allocation", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := f.store.addBuyer(shared.BuyerSnapshot{})
		productID := f.store.addProduct(shared.ProductSnapshot{Name: "Coin Pack", BasePricePaise: 40000})

		// First insert loses to a concurrent writer; the retry succeeds.
		f.store.createLockErr = conflictErr()

		result, err := f.commands.RequestPayableAmount(context.Background(), buyerID, productID)
		require.NoError(t, err)
		assert.Equal(t, int64(40000), result.AmountPaise)
	})

	t.Run("unknown buyer", func(t *testing.T) {
		f := newCheckoutFixture()
		productID := f.store.addProduct(shared.ProductSnapshot{Name: "Coin Pack", BasePricePaise: 40000})

		_, err := f.commands.RequestPayableAmount(context.Background(), uuid.New(), productID)
		assert.ErrorIs(t, err, errs.ErrBuyerNotFound)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := f.store.addBuyer(shared.BuyerSnapshot{})

		_, err := f.commands.RequestPayableAmount(context.Background(), buyerID, uuid.New())
		assert.ErrorIs(t, err, errs.ErrProductNotFound)
	})
}

func TestCancelLock(t *testing.T) {
	t.Run("owner cancels an active lock", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := f.store.addBuyer(shared.BuyerSnapshot{})
		lockID := f.store.addLock(shared.LockSnapshot{
			BuyerID: buyerID, ProductID: uuid.New(), AmountPaise: 40000,
			Status:    paylock.StatusActive.String(),
			CreatedAt: checkoutBase,
			ExpiresAt: checkoutBase.Add(90 * time.Second),
		})

		require.NoError(t, f.commands.CancelLock(context.Background(), buyerID, lockID))

		lock, err := f.store.LockByID(context.Background(), lockID)
		require.NoError(t, err)
		assert.Equal(t, paylock.StatusExpired.String(), lock.Status)
		// expiry is pulled forward so the grace window starts now
		assert.Equal(t, checkoutBase, lock.ExpiresAt)
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		f := newCheckoutFixture()
		buyerID := f.store.addBuyer(shared.BuyerSnapshot{})
		lockID := f.store.addLock(shared.LockSnapshot{
			BuyerID: buyerID, ProductID: uuid.New(), AmountPaise: 40000,
			Status:    paylock.StatusActive.String(),
			ExpiresAt: checkoutBase.Add(90 * time.Second),
		})

		require.NoError(t, f.commands.CancelLock(context.Background(), buyerID, lockID))
		require.NoError(t, f.commands.CancelLock(context.Background(), buyerID, lockID))
	})

	t.Run("other buyers are forbidden", func(t *testing.T) {
		f := newCheckoutFixture()
		lockID := f.store.addLock(shared.LockSnapshot{
			BuyerID: uuid.New(), ProductID: uuid.New(), AmountPaise: 40000,
			Status:    paylock.StatusActive.String(),
			ExpiresAt: checkoutBase.Add(90 * time.Second),
		})

		err := f.commands.CancelLock(context.Background(), uuid.New(), lockID)
		assert.ErrorIs(t, err, errs.ErrLockForbidden)
	})

	t.Run("unknown lock", func(t *testing.T) {
		f := newCheckoutFixture()
		err := f.commands.CancelLock(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, errs.ErrLockNotFound)
	})
}
