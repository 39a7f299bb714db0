package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Trips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateTrip generates ID and keeps member order", func(t *testing.T) {
		trip := &models.Trip{
			Name:      "Lisbon",
			Currency:  "EUR",
			Members:   []string{"Cole", "Ana", "Bob", "Ana"},
			CreatedBy: "Cole",
		}
		require.NoError(t, store.CreateTrip(ctx, trip))

		assert.NotEmpty(t, trip.ID, "Expected trip ID to be generated")
		assert.NotZero(t, trip.CreatedAt, "Expected CreatedAt to be set")

		got, err := store.GetTrip(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, "Lisbon", got.Name)
		assert.Equal(t, "EUR", got.Currency)
		assert.Equal(t, []string{"Cole", "Ana", "Bob"}, got.Members)
	})

	t.Run("GetTrip returns ErrNotFound for nonexistent trip", func(t *testing.T) {
		_, err := store.GetTrip(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("AddTripMembers appends only new members", func(t *testing.T) {
		trip := &models.Trip{Name: "Porto", Currency: "EUR", Members: []string{"Ana", "Bob"}, CreatedBy: "Ana"}
		require.NoError(t, store.CreateTrip(ctx, trip))

		require.NoError(t, store.AddTripMembers(ctx, trip.ID, []string{"Bob", "Dee", "Eli"}))

		got, err := store.GetTrip(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana", "Bob", "Dee", "Eli"}, got.Members)

		err = store.AddTripMembers(ctx, "nonexistent-id", []string{"Ana"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("RemoveTripMember", func(t *testing.T) {
		trip := &models.Trip{Name: "Madrid", Currency: "EUR", Members: []string{"Ana", "Bob"}, CreatedBy: "Ana"}
		require.NoError(t, store.CreateTrip(ctx, trip))

		require.NoError(t, store.RemoveTripMember(ctx, trip.ID, "Bob", nil))
		got, err := store.GetTrip(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana"}, got.Members)

		assert.ErrorIs(t, store.RemoveTripMember(ctx, trip.ID, "Bob", nil), storage.ErrNotFound)
		assert.ErrorIs(t, store.RemoveTripMember(ctx, "nonexistent-id", "Ana", nil), storage.ErrNotFound)
	})

	t.Run("RemoveTripMember runs check against the ledger", func(t *testing.T) {
		trip := &models.Trip{Name: "Seville", Currency: "EUR", Members: []string{"Ana", "Bob"}, CreatedBy: "Ana"}
		require.NoError(t, store.CreateTrip(ctx, trip))
		require.NoError(t, store.CreateExpense(ctx, &models.Expense{
			TripID: trip.ID, Description: "Tapas", Amount: decimal.NewFromInt(20),
			PaidBy: "Ana", Between: []string{"Ana", "Bob"}, CreatedBy: "Ana",
		}))
		require.NoError(t, store.CreatePayment(ctx, &models.Payment{
			TripID: trip.ID, From: "Bob", To: "Ana", Amount: decimal.NewFromInt(10), CreatedBy: "Bob",
		}))

		blocked := errors.New("blocked")
		var seen *models.Trip
		var seenExpenses, seenPayments int
		err := store.RemoveTripMember(ctx, trip.ID, "Bob", func(current *models.Trip, expenses []*models.Expense, payments []*models.Payment) error {
			seen = current
			seenExpenses, seenPayments = len(expenses), len(payments)
			return blocked
		})
		assert.ErrorIs(t, err, blocked)
		require.NotNil(t, seen)
		assert.Equal(t, []string{"Ana", "Bob"}, seen.Members)
		assert.Equal(t, 1, seenExpenses)
		assert.Equal(t, 1, seenPayments)

		got, err := store.GetTrip(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana", "Bob"}, got.Members, "rejected removal must roll back")

		allow := func(*models.Trip, []*models.Expense, []*models.Payment) error { return nil }
		require.NoError(t, store.RemoveTripMember(ctx, trip.ID, "Bob", allow))
		got, err = store.GetTrip(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana"}, got.Members)
	})

	t.Run("UpdateTrip", func(t *testing.T) {
		trip := &models.Trip{Name: "Rome", Currency: "EUR", Members: []string{"Ana"}, CreatedBy: "Ana"}
		require.NoError(t, store.CreateTrip(ctx, trip))

		trip.Name = "Rome & Naples"
		trip.Destination = "Italy"
		require.NoError(t, store.UpdateTrip(ctx, trip))

		got, err := store.GetTrip(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, "Rome & Naples", got.Name)
		assert.Equal(t, "Italy", got.Destination)

		missing := &models.Trip{ID: "nonexistent-id", Name: "x"}
		assert.ErrorIs(t, store.UpdateTrip(ctx, missing), storage.ErrNotFound)
	})

	t.Run("ListTripsByMember", func(t *testing.T) {
		first := &models.Trip{Name: "Oslo", Currency: "NOK", Members: []string{"Zed"}, CreatedBy: "Zed", CreatedAt: 100}
		second := &models.Trip{Name: "Bergen", Currency: "NOK", Members: []string{"Zed", "Yan"}, CreatedBy: "Zed", CreatedAt: 200}
		require.NoError(t, store.CreateTrip(ctx, first))
		require.NoError(t, store.CreateTrip(ctx, second))

		trips, err := store.ListTripsByMember(ctx, "Zed")
		require.NoError(t, err)
		require.Len(t, trips, 2)
		assert.Equal(t, "Bergen", trips[0].Name, "newest first")
		assert.Equal(t, []string{"Zed", "Yan"}, trips[0].Members)

		trips, err = store.ListTripsByMember(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, trips)
	})
}

func TestSQLiteStore_Ledger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trip := &models.Trip{Name: "Berlin", Currency: "EUR", Members: []string{"Ana", "Bob", "Cole"}, CreatedBy: "Ana"}
	require.NoError(t, store.CreateTrip(ctx, trip))

	t.Run("expense round trip keeps amount and sharer order", func(t *testing.T) {
		expense := &models.Expense{
			TripID:      trip.ID,
			Description: "Dinner",
			Amount:      decimal.RequireFromString("90.10"),
			PaidBy:      "Ana",
			Between:     []string{"Cole", "Ana", "Bob"},
			CreatedBy:   "Ana",
		}
		require.NoError(t, store.CreateExpense(ctx, expense))
		assert.NotEmpty(t, expense.ID)

		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dinner", got.Description)
		assert.True(t, got.Amount.Equal(decimal.RequireFromString("90.1")), "amount = %s", got.Amount)
		assert.Equal(t, []string{"Cole", "Ana", "Bob"}, got.Between)
	})

	t.Run("ListExpensesByTrip returns oldest first with sharers", func(t *testing.T) {
		other := &models.Trip{Name: "Hamburg", Currency: "EUR", Members: []string{"Ana", "Bob"}, CreatedBy: "Ana"}
		require.NoError(t, store.CreateTrip(ctx, other))

		for i, desc := range []string{"Train", "Hotel", "Beer"} {
			require.NoError(t, store.CreateExpense(ctx, &models.Expense{
				TripID:      other.ID,
				Description: desc,
				Amount:      decimal.NewFromInt(int64(10 * (i + 1))),
				PaidBy:      "Bob",
				Between:     []string{"Ana", "Bob"},
				CreatedBy:   "Bob",
				CreatedAt:   1000,
			}))
		}

		expenses, err := store.ListExpensesByTrip(ctx, other.ID)
		require.NoError(t, err)
		require.Len(t, expenses, 3)
		assert.Equal(t, "Train", expenses[0].Description)
		assert.Equal(t, "Beer", expenses[2].Description)
		for _, e := range expenses {
			assert.Equal(t, []string{"Ana", "Bob"}, e.Between)
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		expense := &models.Expense{TripID: trip.ID, Description: "Taxi", Amount: decimal.NewFromInt(12), PaidBy: "Bob", Between: []string{"Bob"}, CreatedBy: "Bob"}
		require.NoError(t, store.CreateExpense(ctx, expense))

		require.NoError(t, store.DeleteExpense(ctx, expense.ID))
		_, err := store.GetExpense(ctx, expense.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteExpense(ctx, expense.ID), storage.ErrNotFound)
	})

	t.Run("payment round trip", func(t *testing.T) {
		payment := &models.Payment{
			TripID:    trip.ID,
			From:      "Bob",
			To:        "Ana",
			Amount:    decimal.RequireFromString("30.05"),
			Note:      "cash",
			CreatedBy: "Bob",
		}
		require.NoError(t, store.CreatePayment(ctx, payment))

		got, err := store.GetPayment(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bob", got.From)
		assert.Equal(t, "Ana", got.To)
		assert.Equal(t, "cash", got.Note)
		assert.True(t, got.Amount.Equal(payment.Amount))

		payments, err := store.ListPaymentsByTrip(ctx, trip.ID)
		require.NoError(t, err)
		assert.Len(t, payments, 1)

		require.NoError(t, store.DeletePayment(ctx, payment.ID))
		assert.ErrorIs(t, store.DeletePayment(ctx, payment.ID), storage.ErrNotFound)
	})

	t.Run("DeleteTrip cascades expenses and payments", func(t *testing.T) {
		doomed := &models.Trip{Name: "Cancelled", Currency: "EUR", Members: []string{"Ana", "Bob"}, CreatedBy: "Ana"}
		require.NoError(t, store.CreateTrip(ctx, doomed))
		expense := &models.Expense{TripID: doomed.ID, Description: "Deposit", Amount: decimal.NewFromInt(50), PaidBy: "Ana", Between: []string{"Ana", "Bob"}, CreatedBy: "Ana"}
		require.NoError(t, store.CreateExpense(ctx, expense))
		require.NoError(t, store.CreatePayment(ctx, &models.Payment{TripID: doomed.ID, From: "Bob", To: "Ana", Amount: decimal.NewFromInt(25), CreatedBy: "Bob"}))

		require.NoError(t, store.DeleteTrip(ctx, doomed.ID))

		_, err := store.GetExpense(ctx, expense.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		payments, err := store.ListPaymentsByTrip(ctx, doomed.ID)
		require.NoError(t, err)
		assert.Empty(t, payments)
		assert.ErrorIs(t, store.DeleteTrip(ctx, doomed.ID), storage.ErrNotFound)
	})
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ana := models.NewUser("ana@example.com", "Ana", "hash-a")
	bob := models.NewUser("bob@example.com", "Bob", "hash-b")
	require.NoError(t, store.CreateUser(ctx, ana))
	require.NoError(t, store.CreateUser(ctx, bob))

	got, err := store.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, got.ID)
	assert.Equal(t, "hash-a", got.PasswordHash)

	got, err = store.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.DisplayName)

	_, err = store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = store.CreateUser(ctx, models.NewUser("ana@example.com", "Ana again", "x"))
	assert.ErrorIs(t, err, storage.ErrAlreadyExists, "duplicate email")

	users, err := store.GetUsersByIDs(ctx, []string{ana.ID, bob.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Ana", users[ana.ID].DisplayName)

	users, err = store.GetUsersByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}
