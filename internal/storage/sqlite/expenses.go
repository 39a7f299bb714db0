package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

// CreateExpense persists a new expense and its sharers.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, trip_id, description, amount, paid_by, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.TripID, expense.Description, expense.Amount.String(),
		expense.PaidBy, expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, member := range expense.Between {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO expense_sharers (expense_id, member, position) VALUES (?, ?, ?)",
			expense.ID, member, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense sharer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its sharers.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, trip_id, description, amount, paid_by, created_by, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.TripID, &expense.Description, &expense.Amount,
		&expense.PaidBy, &expense.CreatedBy, &expense.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT member FROM expense_sharers WHERE expense_id = ? ORDER BY position",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense sharers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, fmt.Errorf("failed to scan expense sharer: %w", err)
		}
		expense.Between = append(expense.Between, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense sharers: %w", err)
	}

	return expense, nil
}

// ListExpensesByTrip retrieves all expenses of a trip in the order they were recorded.
func (s *SQLiteStore) ListExpensesByTrip(ctx context.Context, tripID string) ([]*models.Expense, error) {
	return listExpenses(ctx, s.db, tripID)
}

func listExpenses(ctx context.Context, q queryer, tripID string) ([]*models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, trip_id, description, amount, paid_by, created_by, created_at
		 FROM expenses WHERE trip_id = ? ORDER BY created_at, rowid`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		e := &models.Expense{}
		if err := rows.Scan(&e.ID, &e.TripID, &e.Description, &e.Amount,
			&e.PaidBy, &e.CreatedBy, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	// Load every sharer of the trip in one pass.
	sharerRows, err := q.QueryContext(ctx,
		`SELECT es.expense_id, es.member
		 FROM expense_sharers es JOIN expenses e ON e.id = es.expense_id
		 WHERE e.trip_id = ?
		 ORDER BY es.expense_id, es.position`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense sharers: %w", err)
	}
	defer sharerRows.Close()

	for sharerRows.Next() {
		var expenseID, member string
		if err := sharerRows.Scan(&expenseID, &member); err != nil {
			return nil, fmt.Errorf("failed to scan expense sharer: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Between = append(e.Between, member)
		}
	}
	if err := sharerRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense sharers: %w", err)
	}

	return expenses, nil
}

// DeleteExpense removes an expense by ID; its sharers cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireAffected(res, "expense", expenseID)
}
