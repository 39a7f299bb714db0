// Package service implements the tripsplit Connect services on top of
// storage.Store and the settlement calculator.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/auth"
	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/metrics"
	"github.com/mmynk/tripsplit/internal/middleware"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

var (
	errTripIDRequired = errors.New("trip_id required")
	errNotMember      = errors.New("caller is not a member of this trip")
)

// Settings carries the server-wide knobs the services depend on.
type Settings struct {
	// DefaultCurrency is used for trips created without a currency.
	DefaultCurrency string

	// Epsilon is the tolerance below which a balance counts as settled.
	Epsilon decimal.Decimal

	// Metrics receives settlement observations. May be nil.
	Metrics *metrics.Metrics

	// Logger defaults to slog.Default() when nil.
	Logger *slog.Logger
}

func (s Settings) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// callerID returns the authenticated user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// toConnectError maps domain and storage errors onto Connect codes.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	var invalid *calculator.InvalidExpenseError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.As(err, &invalid), isValidationError(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		calculator.ErrEmptySharers,
		calculator.ErrNegativeAmount,
		calculator.ErrNonPositiveAmount,
		calculator.ErrMissingPayer,
		calculator.ErrMissingDescription,
		calculator.ErrUnknownParticipant,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// memberTrip loads a trip and checks that the caller belongs to it.
func memberTrip(ctx context.Context, store storage.TripStore, tripID string) (*models.Trip, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if tripID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errTripIDRequired)
	}

	trip, err := store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !trip.HasMember(userID) {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotMember)
	}
	return trip, nil
}

// settleTrip loads a trip's ledger and runs the calculator over it.
func settleTrip(ctx context.Context, store storage.LedgerStore, trip *models.Trip, epsilon decimal.Decimal) (calculator.Balances, []calculator.Transfer, decimal.Decimal, error) {
	expenses, err := store.ListExpensesByTrip(ctx, trip.ID)
	if err != nil {
		return nil, nil, decimal.Zero, fmt.Errorf("failed to load expenses: %w", err)
	}
	payments, err := store.ListPaymentsByTrip(ctx, trip.ID)
	if err != nil {
		return nil, nil, decimal.Zero, fmt.Errorf("failed to load payments: %w", err)
	}
	return settleLedger(trip, expenses, payments, epsilon)
}

// settleLedger runs the calculator over an already loaded ledger and also
// returns the total spent.
func settleLedger(trip *models.Trip, expenses []*models.Expense, payments []*models.Payment, epsilon decimal.Decimal) (calculator.Balances, []calculator.Transfer, decimal.Decimal, error) {
	total := decimal.Zero
	calcExpenses := make([]calculator.Expense, len(expenses))
	for i, e := range expenses {
		total = total.Add(e.Amount)
		calcExpenses[i] = calculator.Expense{
			Description: e.Description,
			Amount:      e.Amount,
			PaidBy:      e.PaidBy,
			Between:     e.Between,
		}
	}
	calcPayments := make([]calculator.Payment, len(payments))
	for i, p := range payments {
		calcPayments[i] = calculator.Payment{From: p.From, To: p.To, Amount: p.Amount}
	}

	balances, transfers, err := calculator.Settle(trip.Members, calcExpenses, calcPayments, epsilon)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	return balances, transfers, total, nil
}
