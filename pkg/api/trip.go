package api

import "github.com/shopspring/decimal"

type CreateTripRequest struct {
	Name        string   `json:"name"`
	Destination string   `json:"destination,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Members     []string `json:"members,omitempty"`
}

type CreateTripResponse struct {
	Trip *Trip `json:"trip"`
}

type GetTripRequest struct {
	TripID string `json:"tripId"`
}

type GetTripResponse struct {
	Trip *Trip `json:"trip"`
}

type ListTripsRequest struct{}

type ListTripsResponse struct {
	Trips []*Trip `json:"trips"`
}

type UpdateTripRequest struct {
	TripID      string `json:"tripId"`
	Name        string `json:"name"`
	Destination string `json:"destination,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

type UpdateTripResponse struct {
	Trip *Trip `json:"trip"`
}

type AddMembersRequest struct {
	TripID  string   `json:"tripId"`
	Members []string `json:"members"`
}

type AddMembersResponse struct {
	Trip *Trip `json:"trip"`
}

type RemoveMemberRequest struct {
	TripID string `json:"tripId"`
	Member string `json:"member"`
}

type RemoveMemberResponse struct {
	Trip *Trip `json:"trip"`
}

type DeleteTripRequest struct {
	TripID string `json:"tripId"`
}

type DeleteTripResponse struct{}

type GetTripBalancesRequest struct {
	TripID string `json:"tripId"`
}

type GetTripBalancesResponse struct {
	TripID     string           `json:"tripId"`
	Currency   string           `json:"currency"`
	TotalSpent decimal.Decimal  `json:"totalSpent"`
	Balances   []*MemberBalance `json:"balances"`
	Transfers  []*Transfer      `json:"transfers"`
}
