package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/pkg/api"
)

func createTrip(t *testing.T, ts *testServer, name string, members ...string) *api.Trip {
	t.Helper()
	resp, err := ts.trips.CreateTrip(context.Background(), connect.NewRequest(&api.CreateTripRequest{
		Name:    name,
		Members: members,
	}))
	require.NoError(t, err, "CreateTrip failed")
	return resp.Msg.Trip
}

func TestCreateTrip(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := ts.trips.CreateTrip(context.Background(), connect.NewRequest(&api.CreateTripRequest{
		Name:        "  Lisbon  ",
		Destination: "Portugal",
		Members:     []string{"Bob", " Cole ", ""},
	}))
	require.NoError(t, err)

	trip := resp.Msg.Trip
	assert.NotEmpty(t, trip.ID)
	assert.Equal(t, "Lisbon", trip.Name)
	assert.Equal(t, "EUR", trip.Currency, "default currency")
	assert.Equal(t, []string{"Ana", "Bob", "Cole"}, trip.Members, "caller is the first member")
	assert.Equal(t, "Ana", trip.CreatedBy)
	assert.NotZero(t, trip.CreatedAt)

	t.Run("caller listed again is not duplicated", func(t *testing.T) {
		trip := createTrip(t, ts, "Porto", "Bob", "Ana")
		assert.Equal(t, []string{"Ana", "Bob"}, trip.Members)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := ts.trips.CreateTrip(context.Background(), connect.NewRequest(&api.CreateTripRequest{Name: " "}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestGetTrip(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	trip := createTrip(t, ts, "Work offsite", "Bob")

	resp, err := ts.trips.GetTrip(ctx, connect.NewRequest(&api.GetTripRequest{TripID: trip.ID}))
	require.NoError(t, err)
	assert.Equal(t, "Work offsite", resp.Msg.Trip.Name)

	_, err = ts.trips.GetTrip(ctx, as("Bob", &api.GetTripRequest{TripID: trip.ID}))
	assert.NoError(t, err, "members can read the trip")

	_, err = ts.trips.GetTrip(ctx, as("Zed", &api.GetTripRequest{TripID: trip.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = ts.trips.GetTrip(ctx, connect.NewRequest(&api.GetTripRequest{TripID: "nonexistent-id"}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = ts.trips.GetTrip(ctx, connect.NewRequest(&api.GetTripRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestListTrips(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	createTrip(t, ts, "Oslo", "Bob")
	createTrip(t, ts, "Bergen")

	resp, err := ts.trips.ListTrips(ctx, connect.NewRequest(&api.ListTripsRequest{}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Trips, 2)

	resp, err = ts.trips.ListTrips(ctx, as("Bob", &api.ListTripsRequest{}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Trips, 1)
	assert.Equal(t, "Oslo", resp.Msg.Trips[0].Name)

	resp, err = ts.trips.ListTrips(ctx, as("Zed", &api.ListTripsRequest{}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Trips)
}

func TestUpdateTrip(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	trip := createTrip(t, ts, "Rome", "Bob")

	resp, err := ts.trips.UpdateTrip(ctx, connect.NewRequest(&api.UpdateTripRequest{
		TripID:      trip.ID,
		Name:        "Rome & Naples",
		Destination: "Italy",
		Currency:    "chf",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Rome & Naples", resp.Msg.Trip.Name)
	assert.Equal(t, "CHF", resp.Msg.Trip.Currency)
	assert.Equal(t, []string{"Ana", "Bob"}, resp.Msg.Trip.Members, "members untouched")

	_, err = ts.trips.UpdateTrip(ctx, connect.NewRequest(&api.UpdateTripRequest{TripID: trip.ID}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = ts.trips.UpdateTrip(ctx, as("Zed", &api.UpdateTripRequest{TripID: trip.ID, Name: "Mine"}))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestAddMembers(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	trip := createTrip(t, ts, "Madrid", "Bob")

	resp, err := ts.trips.AddMembers(ctx, connect.NewRequest(&api.AddMembersRequest{
		TripID:  trip.ID,
		Members: []string{"Bob", "Cole", "Dee"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "Bob", "Cole", "Dee"}, resp.Msg.Trip.Members)

	_, err = ts.trips.AddMembers(ctx, connect.NewRequest(&api.AddMembersRequest{TripID: trip.ID}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestRemoveMember(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	trip := createTrip(t, ts, "Berlin", "Bob", "Cole")

	_, err := ts.expenses.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		TripID:      trip.ID,
		Description: "Museum",
		Amount:      dec("30"),
		PaidBy:      "Ana",
		Between:     []string{"Ana", "Bob"},
	}))
	require.NoError(t, err)

	t.Run("settled member is removed", func(t *testing.T) {
		resp, err := ts.trips.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{TripID: trip.ID, Member: "Cole"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana", "Bob"}, resp.Msg.Trip.Members)
	})

	t.Run("member with open balance is kept", func(t *testing.T) {
		_, err := ts.trips.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{TripID: trip.ID, Member: "Bob"}))
		assertCode(t, err, connect.CodeFailedPrecondition)
	})

	t.Run("removable once paid up", func(t *testing.T) {
		_, err := ts.expenses.RecordPayment(ctx, as("Bob", &api.RecordPaymentRequest{
			TripID: trip.ID, From: "Bob", To: "Ana", Amount: dec("15"),
		}))
		require.NoError(t, err)

		resp, err := ts.trips.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{TripID: trip.ID, Member: "Bob"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana"}, resp.Msg.Trip.Members)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := ts.trips.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{TripID: trip.ID, Member: "Zed"}))
		assertCode(t, err, connect.CodeNotFound)
	})

	t.Run("last member is kept", func(t *testing.T) {
		_, err := ts.trips.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{TripID: trip.ID, Member: "Ana"}))
		assertCode(t, err, connect.CodeFailedPrecondition)

		resp, err := ts.trips.GetTrip(ctx, connect.NewRequest(&api.GetTripRequest{TripID: trip.ID}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana"}, resp.Msg.Trip.Members)
	})
}

func TestRemoveMember_SoloTripStaysDeletable(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	trip := createTrip(t, ts, "Solo hike")

	_, err := ts.trips.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{TripID: trip.ID, Member: "Ana"}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	list, err := ts.trips.ListTrips(ctx, connect.NewRequest(&api.ListTripsRequest{}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Trips, 1)

	_, err = ts.trips.DeleteTrip(ctx, connect.NewRequest(&api.DeleteTripRequest{TripID: trip.ID}))
	require.NoError(t, err)
}

func TestRemoveMember_SeesExpenseAddedAfterLoad(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	trip := createTrip(t, ts, "Prague", "Bob")

	// The trip is loaded first, then Bob picks up a debt before the removal
	// commits. The check must read the ledger inside the removal.
	svc := NewTripService(ts.store, Settings{Epsilon: calculator.DefaultEpsilon})
	check := svc.removable("Bob")
	loaded, err := ts.store.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.NoError(t, check(loaded, nil, nil))

	_, err = ts.expenses.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		TripID: trip.ID, Description: "Beer", Amount: dec("8"), PaidBy: "Ana",
	}))
	require.NoError(t, err)

	err = ts.store.RemoveTripMember(ctx, trip.ID, "Bob", check)
	assertCode(t, err, connect.CodeFailedPrecondition)

	got, err := ts.store.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "Bob"}, got.Members)
}

func TestDeleteTrip(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	trip := createTrip(t, ts, "Cancelled", "Bob")

	_, err := ts.trips.DeleteTrip(ctx, as("Zed", &api.DeleteTripRequest{TripID: trip.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = ts.trips.DeleteTrip(ctx, connect.NewRequest(&api.DeleteTripRequest{TripID: trip.ID}))
	require.NoError(t, err)

	_, err = ts.trips.GetTrip(ctx, connect.NewRequest(&api.GetTripRequest{TripID: trip.ID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestGetTripBalances(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	trip := createTrip(t, ts, "Dinner club", "Bob", "Cole")

	_, err := ts.expenses.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		TripID:      trip.ID,
		Description: "Dinner",
		Amount:      dec("90"),
		PaidBy:      "Ana",
	}))
	require.NoError(t, err)

	resp, err := ts.trips.GetTripBalances(ctx, connect.NewRequest(&api.GetTripBalancesRequest{TripID: trip.ID}))
	require.NoError(t, err)

	assert.Equal(t, trip.ID, resp.Msg.TripID)
	assert.Equal(t, "EUR", resp.Msg.Currency)
	assertDecimal(t, "90", resp.Msg.TotalSpent)

	require.Len(t, resp.Msg.Balances, 3)
	want := map[string]string{"Ana": "60", "Bob": "-30", "Cole": "-30"}
	for i, b := range resp.Msg.Balances {
		assert.Equal(t, trip.Members[i], b.Participant, "balances follow member order")
		assertDecimal(t, want[b.Participant], b.Net)
	}
	assertDecimal(t, "90", resp.Msg.Balances[0].Paid)
	assertDecimal(t, "30", resp.Msg.Balances[0].Owed)

	require.Len(t, resp.Msg.Transfers, 2)
	assert.Equal(t, "Bob", resp.Msg.Transfers[0].From)
	assert.Equal(t, "Cole", resp.Msg.Transfers[1].From)
	for _, tr := range resp.Msg.Transfers {
		assert.Equal(t, "Ana", tr.To)
		assertDecimal(t, "30", tr.Amount)
	}

	t.Run("payments reduce suggested transfers", func(t *testing.T) {
		_, err := ts.expenses.RecordPayment(ctx, as("Bob", &api.RecordPaymentRequest{
			TripID: trip.ID, From: "Bob", To: "Ana", Amount: dec("30"),
		}))
		require.NoError(t, err)

		resp, err := ts.trips.GetTripBalances(ctx, connect.NewRequest(&api.GetTripBalancesRequest{TripID: trip.ID}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Transfers, 1)
		assert.Equal(t, "Cole", resp.Msg.Transfers[0].From)
		assertDecimal(t, "30", resp.Msg.Transfers[0].Amount)
	})

	t.Run("non-member", func(t *testing.T) {
		_, err := ts.trips.GetTripBalances(ctx, as("Zed", &api.GetTripBalancesRequest{TripID: trip.ID}))
		assertCode(t, err, connect.CodePermissionDenied)
	})
}

func TestGetTripBalances_DisplayNames(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	reg, err := ts.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "bob@example.com",
		DisplayName: "Bob B.",
		Password:    "password123",
	}))
	require.NoError(t, err)
	bobID := reg.Msg.User.ID

	trip := createTrip(t, ts, "Camping", bobID, "Guest")

	resp, err := ts.trips.GetTripBalances(ctx, connect.NewRequest(&api.GetTripBalancesRequest{TripID: trip.ID}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Balances, 3)
	assert.Empty(t, resp.Msg.Balances[0].DisplayName, "Ana has no account")
	assert.Equal(t, "Bob B.", resp.Msg.Balances[1].DisplayName)
	assert.Empty(t, resp.Msg.Balances[2].DisplayName)
	assert.Empty(t, resp.Msg.Transfers, "nothing spent yet")
}
