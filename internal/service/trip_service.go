package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
	"github.com/mmynk/tripsplit/pkg/api"
	"github.com/mmynk/tripsplit/pkg/api/apiconnect"
)

var _ apiconnect.TripServiceHandler = (*TripService)(nil)

var errLastMember = errors.New("cannot remove the last member of a trip; delete the trip instead")

// TripService implements the Connect TripService.
type TripService struct {
	store    storage.Store
	settings Settings
}

// NewTripService creates a new TripService with the given storage backend.
func NewTripService(store storage.Store, settings Settings) *TripService {
	return &TripService{store: store, settings: settings}
}

// CreateTrip creates a new trip. The caller is always a member.
func (s *TripService) CreateTrip(ctx context.Context, req *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	log := s.settings.logger()
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	log.Info("CreateTrip request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("name required"))
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Msg.Currency))
	if currency == "" {
		currency = s.settings.DefaultCurrency
	}

	trip := &models.Trip{
		Name:        name,
		Destination: strings.TrimSpace(req.Msg.Destination),
		Currency:    currency,
		Members:     append([]string{userID}, trimAll(req.Msg.Members)...),
		CreatedBy:   userID,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		log.Error("CreateTrip failed", "error", err)
		return nil, toConnectError(err)
	}

	log.Info("Trip created", "trip_id", trip.ID, "members_count", len(trip.Members))

	return connect.NewResponse(&api.CreateTripResponse{Trip: toAPITrip(trip)}), nil
}

// GetTrip retrieves a trip the caller belongs to.
func (s *TripService) GetTrip(ctx context.Context, req *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	trip, err := memberTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		s.settings.logger().Warn("GetTrip failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, err
	}
	return connect.NewResponse(&api.GetTripResponse{Trip: toAPITrip(trip)}), nil
}

// ListTrips lists the caller's trips, newest first.
func (s *TripService) ListTrips(ctx context.Context, req *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	trips, err := s.store.ListTripsByMember(ctx, userID)
	if err != nil {
		s.settings.logger().Error("ListTrips failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Trip, len(trips))
	for i, t := range trips {
		out[i] = toAPITrip(t)
	}

	s.settings.logger().Info("ListTrips successful", "user_id", userID, "count", len(trips))
	return connect.NewResponse(&api.ListTripsResponse{Trips: out}), nil
}

// UpdateTrip updates a trip's name, destination and currency.
func (s *TripService) UpdateTrip(ctx context.Context, req *connect.Request[api.UpdateTripRequest]) (*connect.Response[api.UpdateTripResponse], error) {
	trip, err := memberTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("name required"))
	}
	trip.Name = name
	trip.Destination = strings.TrimSpace(req.Msg.Destination)
	if c := strings.ToUpper(strings.TrimSpace(req.Msg.Currency)); c != "" {
		trip.Currency = c
	}

	if err := s.store.UpdateTrip(ctx, trip); err != nil {
		s.settings.logger().Error("UpdateTrip failed", "trip_id", trip.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.settings.logger().Info("Trip updated", "trip_id", trip.ID)
	return connect.NewResponse(&api.UpdateTripResponse{Trip: toAPITrip(trip)}), nil
}

// AddMembers adds members to a trip. Existing members are ignored.
func (s *TripService) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	trip, err := memberTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	members := trimAll(req.Msg.Members)
	if len(members) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("at least one member required"))
	}

	if err := s.store.AddTripMembers(ctx, trip.ID, members); err != nil {
		s.settings.logger().Error("AddMembers failed", "trip_id", trip.ID, "error", err)
		return nil, toConnectError(err)
	}

	updated, err := s.store.GetTrip(ctx, trip.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.settings.logger().Info("Members added", "trip_id", trip.ID, "members_count", len(updated.Members))
	return connect.NewResponse(&api.AddMembersResponse{Trip: toAPITrip(updated)}), nil
}

// RemoveMember removes a member whose balance is settled. The last member
// cannot be removed.
func (s *TripService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	trip, err := memberTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	member := strings.TrimSpace(req.Msg.Member)
	err = s.store.RemoveTripMember(ctx, trip.ID, member, s.removable(member))
	if err != nil {
		s.settings.logger().Warn("RemoveMember rejected", "trip_id", trip.ID, "member", member, "error", err)
		return nil, toConnectError(err)
	}

	updated, err := s.store.GetTrip(ctx, trip.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.settings.logger().Info("Member removed", "trip_id", trip.ID, "member", member)
	return connect.NewResponse(&api.RemoveMemberResponse{Trip: toAPITrip(updated)}), nil
}

// removable allows a removal only while the member is still on the trip, is
// not its last member and has a settled balance. It runs inside the store's
// transaction so the ledger cannot change in between.
func (s *TripService) removable(member string) storage.RemovalCheck {
	return func(trip *models.Trip, expenses []*models.Expense, payments []*models.Payment) error {
		if !trip.HasMember(member) {
			return connect.NewError(connect.CodeNotFound, fmt.Errorf("member %q is not on this trip", member))
		}
		if len(trip.Members) == 1 {
			return connect.NewError(connect.CodeFailedPrecondition, errLastMember)
		}
		balances, _, _, err := settleLedger(trip, expenses, payments, s.settings.Epsilon)
		if err != nil {
			return err
		}
		if net := balances.Net(member); net.Abs().GreaterThan(s.settings.Epsilon) {
			return connect.NewError(connect.CodeFailedPrecondition,
				fmt.Errorf("member %q has an unsettled balance of %s", member, net.StringFixed(2)))
		}
		return nil
	}
}

// DeleteTrip removes a trip together with its expenses and payments.
func (s *TripService) DeleteTrip(ctx context.Context, req *connect.Request[api.DeleteTripRequest]) (*connect.Response[api.DeleteTripResponse], error) {
	trip, err := memberTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteTrip(ctx, trip.ID); err != nil {
		s.settings.logger().Error("DeleteTrip failed", "trip_id", trip.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.settings.logger().Info("Trip deleted", "trip_id", trip.ID)
	return connect.NewResponse(&api.DeleteTripResponse{}), nil
}

// GetTripBalances calculates balances and suggested transfers across all
// expenses and payments of a trip.
func (s *TripService) GetTripBalances(ctx context.Context, req *connect.Request[api.GetTripBalancesRequest]) (*connect.Response[api.GetTripBalancesResponse], error) {
	log := s.settings.logger()
	log.Info("GetTripBalances request received", "trip_id", req.Msg.TripID)

	trip, err := memberTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	balances, transfers, total, err := settleTrip(ctx, s.store, trip, s.settings.Epsilon)
	if err != nil {
		log.Error("GetTripBalances failed - calculation error", "trip_id", trip.ID, "error", err)
		return nil, toConnectError(err)
	}

	ids := make([]string, len(balances))
	for i, b := range balances {
		ids[i] = b.Participant
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		log.Error("GetTripBalances failed - could not load users", "trip_id", trip.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.settings.Metrics.ObserveSettlement("trip", len(transfers))

	log.Info("GetTripBalances successful",
		"trip_id", trip.ID,
		"members_count", len(balances),
		"transfers_count", len(transfers),
	)

	return connect.NewResponse(&api.GetTripBalancesResponse{
		TripID:     trip.ID,
		Currency:   trip.Currency,
		TotalSpent: total,
		Balances:   toAPIBalances(balances, users),
		Transfers:  toAPITransfers(transfers),
	}), nil
}

// trimAll trims whitespace and drops empty entries.
func trimAll(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
