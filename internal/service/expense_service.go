package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
	"github.com/mmynk/tripsplit/pkg/api"
	"github.com/mmynk/tripsplit/pkg/api/apiconnect"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

var (
	errSelfPayment       = errors.New("payment sender and receiver must differ")
	errNonPositivePay    = errors.New("payment amount must be positive")
	errNegativeEpsilon   = errors.New("epsilon cannot be negative")
	errMissingPaymentEnd = errors.New("payment needs both from and to")
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store    storage.Store
	settings Settings
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store, settings Settings) *ExpenseService {
	return &ExpenseService{store: store, settings: settings}
}

// PreviewSettlement computes balances and suggested transfers for an
// ad-hoc list of expenses and payments without storing anything.
func (s *ExpenseService) PreviewSettlement(ctx context.Context, req *connect.Request[api.PreviewSettlementRequest]) (*connect.Response[api.PreviewSettlementResponse], error) {
	log := s.settings.logger()
	log.Info("PreviewSettlement request received",
		"participants_count", len(req.Msg.Participants),
		"expenses_count", len(req.Msg.Expenses),
		"payments_count", len(req.Msg.Payments),
	)

	epsilon := s.settings.Epsilon
	if req.Msg.Epsilon != nil {
		if req.Msg.Epsilon.IsNegative() {
			return nil, connect.NewError(connect.CodeInvalidArgument, errNegativeEpsilon)
		}
		epsilon = *req.Msg.Epsilon
	}

	expenses := make([]calculator.Expense, 0, len(req.Msg.Expenses))
	for _, e := range req.Msg.Expenses {
		if e == nil {
			continue
		}
		expenses = append(expenses, calculator.Expense{
			Description: e.Description,
			Amount:      e.Amount,
			PaidBy:      e.PaidBy,
			Between:     e.Between,
		})
	}
	payments := make([]calculator.Payment, 0, len(req.Msg.Payments))
	for _, p := range req.Msg.Payments {
		if p == nil {
			continue
		}
		if err := checkPayment(p.From, p.To, p.Amount); err != nil {
			return nil, err
		}
		payments = append(payments, calculator.Payment{From: p.From, To: p.To, Amount: p.Amount})
	}

	balances, transfers, err := calculator.Settle(req.Msg.Participants, expenses, payments, epsilon)
	if err != nil {
		log.Warn("PreviewSettlement failed", "error", err)
		return nil, toConnectError(err)
	}

	s.settings.Metrics.ObserveSettlement("preview", len(transfers))

	return connect.NewResponse(&api.PreviewSettlementResponse{
		Balances:  toAPIBalances(balances, nil),
		Transfers: toAPITransfers(transfers),
	}), nil
}

// AddExpense validates and records an expense on a trip. An empty Between
// splits the expense across every trip member.
func (s *ExpenseService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	log := s.settings.logger()
	trip, err := memberTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	log.Info("AddExpense request received",
		"trip_id", trip.ID,
		"description", req.Msg.Description,
		"amount", req.Msg.Amount.String(),
	)

	between := trimAll(req.Msg.Between)
	if len(between) == 0 {
		between = trip.Members
	}
	candidate := calculator.Expense{
		Description: strings.TrimSpace(req.Msg.Description),
		Amount:      req.Msg.Amount,
		PaidBy:      strings.TrimSpace(req.Msg.PaidBy),
		Between:     between,
	}
	if err := calculator.ValidateExpense(candidate, trip.Members); err != nil {
		log.Warn("AddExpense rejected", "trip_id", trip.ID, "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	shares, err := calculator.CalculateSplit(candidate.Amount, candidate.Between)
	if err != nil {
		return nil, toConnectError(err)
	}
	sharers := make([]string, len(shares))
	for i, sh := range shares {
		sharers[i] = sh.Participant
	}

	userID, _ := callerID(ctx)
	expense := &models.Expense{
		TripID:      trip.ID,
		Description: candidate.Description,
		Amount:      candidate.Amount,
		PaidBy:      candidate.PaidBy,
		Between:     sharers,
		CreatedBy:   userID,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		log.Error("AddExpense failed", "trip_id", trip.ID, "error", err)
		return nil, toConnectError(err)
	}

	log.Info("Expense added", "trip_id", trip.ID, "expense_id", expense.ID, "sharers_count", len(sharers))

	return connect.NewResponse(&api.AddExpenseResponse{
		Expense: toAPIExpense(expense),
		Shares:  toAPIShares(shares),
	}), nil
}

// ListExpenses lists a trip's expenses, oldest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	trip, err := memberTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByTrip(ctx, trip.ID)
	if err != nil {
		s.settings.logger().Error("ListExpenses failed", "trip_id", trip.ID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// DeleteExpense removes an expense from a trip the caller belongs to.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	if req.Msg.ExpenseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("expense_id required"))
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := memberTrip(ctx, s.store, expense.TripID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		s.settings.logger().Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.settings.logger().Info("Expense deleted", "trip_id", expense.TripID, "expense_id", expense.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// RecordPayment records money one member sent another to settle up.
func (s *ExpenseService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	log := s.settings.logger()
	trip, err := memberTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	from := strings.TrimSpace(req.Msg.From)
	to := strings.TrimSpace(req.Msg.To)
	if err := checkPayment(from, to, req.Msg.Amount); err != nil {
		return nil, err
	}
	for _, m := range []string{from, to} {
		if !trip.HasMember(m) {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("%w: %q", calculator.ErrUnknownParticipant, m))
		}
	}

	userID, _ := callerID(ctx)
	payment := &models.Payment{
		TripID:    trip.ID,
		From:      from,
		To:        to,
		Amount:    req.Msg.Amount,
		Note:      strings.TrimSpace(req.Msg.Note),
		CreatedBy: userID,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		log.Error("RecordPayment failed", "trip_id", trip.ID, "error", err)
		return nil, toConnectError(err)
	}

	log.Info("Payment recorded",
		"trip_id", trip.ID,
		"payment_id", payment.ID,
		"from", from,
		"to", to,
		"amount", payment.Amount.String(),
	)
	return connect.NewResponse(&api.RecordPaymentResponse{Payment: toAPIPayment(payment)}), nil
}

// ListPayments lists a trip's payments, oldest first.
func (s *ExpenseService) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	trip, err := memberTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	payments, err := s.store.ListPaymentsByTrip(ctx, trip.ID)
	if err != nil {
		s.settings.logger().Error("ListPayments failed", "trip_id", trip.ID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Payment, len(payments))
	for i, p := range payments {
		out[i] = toAPIPayment(p)
	}
	return connect.NewResponse(&api.ListPaymentsResponse{Payments: out}), nil
}

// DeletePayment removes a recorded payment.
func (s *ExpenseService) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	if req.Msg.PaymentID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("payment_id required"))
	}

	payment, err := s.store.GetPayment(ctx, req.Msg.PaymentID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := memberTrip(ctx, s.store, payment.TripID); err != nil {
		return nil, err
	}

	if err := s.store.DeletePayment(ctx, payment.ID); err != nil {
		s.settings.logger().Error("DeletePayment failed", "payment_id", payment.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.settings.logger().Info("Payment deleted", "trip_id", payment.TripID, "payment_id", payment.ID)
	return connect.NewResponse(&api.DeletePaymentResponse{}), nil
}

// checkPayment rejects payments that are missing an end, sent to oneself or
// not positive.
func checkPayment(from, to string, amount decimal.Decimal) error {
	switch {
	case strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "":
		return connect.NewError(connect.CodeInvalidArgument, errMissingPaymentEnd)
	case from == to:
		return connect.NewError(connect.CodeInvalidArgument, errSelfPayment)
	case !amount.IsPositive():
		return connect.NewError(connect.CodeInvalidArgument, errNonPositivePay)
	}
	return nil
}
