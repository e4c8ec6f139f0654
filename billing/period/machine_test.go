package period_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fablepress/fablepress/billing/catalog"
	"github.com/fablepress/fablepress/billing/period"
	"github.com/fablepress/fablepress/billing/usage"
)

var testNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestMachine(t *testing.T) (*period.Machine, *usage.MemoryStore) {
	t.Helper()

	cat, err := catalog.New(context.Background(), catalog.NewInMemSource(catalog.DefaultPlans()...))
	require.NoError(t, err)

	store := usage.NewMemoryStore()
	machine := period.NewMachine(store, cat, period.WithClock(func() time.Time { return testNow }))
	return machine, store
}

func createTrialAccount(t *testing.T, store usage.Store) *usage.Account {
	t.Helper()
	account := usage.NewTrialAccount(uuid.New(), catalog.PlanTrial, 7, testNow.AddDate(0, 0, -2))
	require.NoError(t, store.Create(context.Background(), account))
	return account
}

func subscribe(t *testing.T, machine *period.Machine, store usage.Store) *usage.Account {
	t.Helper()
	account := createTrialAccount(t, store)
	updated, err := machine.ActivateCheckout(context.Background(), account.ID, "hobbyist",
		testNow, testNow.AddDate(0, 1, 0), "cus_123", "sub_123")
	require.NoError(t, err)
	return updated
}

func TestMachine_ActivateCheckout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("from active trial", func(t *testing.T) {
		t.Parallel()
		machine, store := newTestMachine(t)
		account := createTrialAccount(t, store)

		// Pre-existing trial usage must not carry into the paid period.
		_, err := store.TryConsume(ctx, account.ID, usage.CounterBooks, 1, 1)
		require.NoError(t, err)

		periodEnd := testNow.AddDate(0, 1, 0)
		updated, err := machine.ActivateCheckout(ctx, account.ID, "hobbyist",
			testNow, periodEnd, "cus_123", "sub_123")
		require.NoError(t, err)

		assert.Equal(t, "hobbyist", updated.PlanID)
		assert.Equal(t, usage.StatusActive, updated.Status)
		assert.Nil(t, updated.TrialEndsAt, "trial clock stops on upgrade")
		require.NotNil(t, updated.CurrentPeriodEnd)
		assert.Equal(t, periodEnd, *updated.CurrentPeriodEnd)
		assert.Equal(t, "cus_123", updated.ProviderCustomerID)
		assert.Equal(t, "sub_123", updated.ProviderSubID)
		assert.Zero(t, updated.BooksUsed)
	})

	t.Run("from expired trial", func(t *testing.T) {
		t.Parallel()
		machine, store := newTestMachine(t)
		account := usage.NewTrialAccount(uuid.New(), catalog.PlanTrial, 7, testNow.AddDate(0, 0, -30))
		require.NoError(t, store.Create(ctx, account))

		updated, err := machine.ActivateCheckout(ctx, account.ID, "pro",
			testNow, testNow.AddDate(0, 1, 0), "cus_1", "sub_1")
		require.NoError(t, err)
		assert.Equal(t, "pro", updated.PlanID)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()
		machine, store := newTestMachine(t)
		account := createTrialAccount(t, store)

		_, err := machine.ActivateCheckout(ctx, account.ID, "no-such-plan",
			testNow, testNow.AddDate(0, 1, 0), "", "")
		assert.ErrorIs(t, err, period.ErrUnknownPlan)
	})

	t.Run("inverted period", func(t *testing.T) {
		t.Parallel()
		machine, store := newTestMachine(t)
		account := createTrialAccount(t, store)

		_, err := machine.ActivateCheckout(ctx, account.ID, "hobbyist",
			testNow, testNow, "", "")
		assert.ErrorIs(t, err, period.ErrInvalidPeriod)
	})

	t.Run("rejected from an active subscription", func(t *testing.T) {
		t.Parallel()
		machine, store := newTestMachine(t)
		account := subscribe(t, machine, store)

		_, err := machine.ActivateCheckout(ctx, account.ID, "pro",
			testNow, testNow.AddDate(0, 1, 0), "", "")
		require.ErrorIs(t, err, period.ErrInvalidTransition)

		var terr *period.TransitionError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, period.StateSubscribedActive, terr.From)
	})
}

func TestMachine_RenewPeriod(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("advances period and resets counters", func(t *testing.T) {
		t.Parallel()
		machine, store := newTestMachine(t)
		account := subscribe(t, machine, store)

		for _, counter := range usage.Counters {
			_, err := store.TryConsume(ctx, account.ID, counter, 3, -1)
			require.NoError(t, err)
		}

		nextStart := testNow.AddDate(0, 1, 0)
		nextEnd := testNow.AddDate(0, 2, 0)
		paidAt := nextStart.Add(time.Minute)

		updated, err := machine.RenewPeriod(ctx, account.ID, nextStart, nextEnd, paidAt)
		require.NoError(t, err)

		assert.Equal(t, usage.StatusActive, updated.Status)
		require.NotNil(t, updated.CurrentPeriodStart)
		assert.Equal(t, nextStart, *updated.CurrentPeriodStart)
		require.NotNil(t, updated.CurrentPeriodEnd)
		assert.Equal(t, nextEnd, *updated.CurrentPeriodEnd)
		require.NotNil(t, updated.LastPaymentDate)
		assert.Equal(t, paidAt, *updated.LastPaymentDate)
		for _, counter := range usage.Counters {
			assert.Zero(t, updated.UsedFor(counter), "counter %s", counter)
		}
	})

	t.Run("recovers a past due account", func(t *testing.T) {
		t.Parallel()
		machine, store := newTestMachine(t)
		account := subscribe(t, machine, store)

		_, err := machine.MarkPastDue(ctx, account.ID)
		require.NoError(t, err)

		updated, err := machine.RenewPeriod(ctx, account.ID,
			testNow.AddDate(0, 1, 0), testNow.AddDate(0, 2, 0), testNow)
		require.NoError(t, err)
		assert.Equal(t, usage.StatusActive, updated.Status)
	})

	t.Run("rejected without a subscription", func(t *testing.T) {
		t.Parallel()
		machine, store := newTestMachine(t)
		account := createTrialAccount(t, store)

		_, err := machine.RenewPeriod(ctx, account.ID,
			testNow, testNow.AddDate(0, 1, 0), testNow)
		assert.ErrorIs(t, err, period.ErrNotSubscribed)
	})
}

func TestMachine_Cancellation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("request sets the flag only", func(t *testing.T) {
		t.Parallel()
		machine, store := newTestMachine(t)
		account := subscribe(t, machine, store)
		periodEnd := *account.CurrentPeriodEnd

		updated, err := machine.RequestCancel(ctx, account.ID)
		require.NoError(t, err)

		assert.True(t, updated.CancelAtPeriodEnd)
		assert.Equal(t, usage.StatusActive, updated.Status, "status untouched until period end")
		assert.Equal(t, "hobbyist", updated.PlanID)
		require.NotNil(t, updated.CurrentPeriodEnd)
		assert.Equal(t, periodEnd, *updated.CurrentPeriodEnd)

		// Still mid-period, so the account keeps full access.
		assert.Equal(t, period.StateSubscribedActive, period.StateOf(updated, testNow.AddDate(0, 0, 10)))
		// Once the period lapses the flag turns the state canceled.
		assert.Equal(t, period.StateCanceled, period.StateOf(updated, periodEnd))
	})

	t.Run("provider cancellation mirrors the flag", func(t *testing.T) {
		t.Parallel()
		machine, store := newTestMachine(t)
		account := subscribe(t, machine, store)

		updated, err := machine.MarkCanceled(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, updated.CancelAtPeriodEnd)
		assert.Equal(t, usage.StatusActive, updated.Status)
	})

	t.Run("rejected on a trial", func(t *testing.T) {
		t.Parallel()
		machine, store := newTestMachine(t)
		account := createTrialAccount(t, store)

		_, err := machine.RequestCancel(ctx, account.ID)
		assert.ErrorIs(t, err, period.ErrInvalidTransition)
	})
}

func TestMachine_MarkPastDue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	machine, store := newTestMachine(t)
	account := subscribe(t, machine, store)

	updated, err := machine.MarkPastDue(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, usage.StatusPastDue, updated.Status)

	// Grace: access persists until the period end.
	assert.Equal(t, period.StateSubscribedGrace, period.StateOf(updated, testNow))
	assert.True(t, period.StateOf(updated, testNow).HasAccess())
	assert.Equal(t, period.StateSubscribedExpired, period.StateOf(updated, updated.CurrentPeriodEnd.Add(time.Second)))
}
