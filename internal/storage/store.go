// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tripsplit/internal/models"
)

var (
	// ErrNotFound is returned (wrapped) when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned (wrapped) when a write collides with a
	// unique record, such as a second account for one email.
	ErrAlreadyExists = errors.New("already exists")
)

// RemovalCheck inspects a trip and its ledger before a member is removed.
type RemovalCheck func(trip *models.Trip, expenses []*models.Expense, payments []*models.Payment) error

// Store defines the interface for trip, expense, payment and user storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	TripStore
	LedgerStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}

// TripStore persists trips and their member lists.
type TripStore interface {
	// CreateTrip persists a new trip. The trip.ID and trip.CreatedAt fields
	// are populated by the store when empty.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip with its members in insertion order.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// ListTripsByMember returns the trips memberID belongs to, newest first.
	ListTripsByMember(ctx context.Context, memberID string) ([]*models.Trip, error)

	// UpdateTrip updates name, destination and currency of an existing trip.
	UpdateTrip(ctx context.Context, trip *models.Trip) error

	// AddTripMembers appends members not already on the trip.
	AddTripMembers(ctx context.Context, tripID string, members []string) error

	// RemoveTripMember removes one member from the trip. When check is not
	// nil it runs inside the same transaction against the trip and its
	// ledger, and a non-nil result aborts the removal and is returned as is.
	RemoveTripMember(ctx context.Context, tripID, member string, check RemovalCheck) error

	// DeleteTrip removes a trip together with its expenses and payments.
	DeleteTrip(ctx context.Context, tripID string) error
}

// LedgerStore persists the expenses and payments recorded on trips.
type LedgerStore interface {
	// CreateExpense persists a new expense, populating ID and CreatedAt.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByTrip returns a trip's expenses, oldest first.
	ListExpensesByTrip(ctx context.Context, tripID string) ([]*models.Expense, error)

	// DeleteExpense removes an expense by ID.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreatePayment persists a new payment, populating ID and CreatedAt.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// GetPayment retrieves a payment by ID.
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)

	// ListPaymentsByTrip returns a trip's payments, oldest first.
	ListPaymentsByTrip(ctx context.Context, tripID string) ([]*models.Payment, error)

	// DeletePayment removes a payment by ID.
	DeletePayment(ctx context.Context, paymentID string) error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}
