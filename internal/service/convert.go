package service

import (
	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPITrip(t *models.Trip) *api.Trip {
	members := t.Members
	if members == nil {
		members = []string{}
	}
	return &api.Trip{
		ID:          t.ID,
		Name:        t.Name,
		Destination: t.Destination,
		Currency:    t.Currency,
		Members:     members,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		TripID:      e.TripID,
		Description: e.Description,
		Amount:      e.Amount,
		PaidBy:      e.PaidBy,
		Between:     e.Between,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func toAPIPayment(p *models.Payment) *api.Payment {
	return &api.Payment{
		ID:        p.ID,
		TripID:    p.TripID,
		From:      p.From,
		To:        p.To,
		Amount:    p.Amount,
		Note:      p.Note,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
	}
}

// toAPIBalances converts balances, filling DisplayName for members with an
// account in users.
func toAPIBalances(balances calculator.Balances, users map[string]*models.User) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = &api.MemberBalance{
			Participant: b.Participant,
			Paid:        b.Paid,
			Owed:        b.Owed,
			Net:         b.Net,
		}
		if u, ok := users[b.Participant]; ok {
			out[i].DisplayName = u.DisplayName
		}
	}
	return out
}

func toAPITransfers(transfers []calculator.Transfer) []*api.Transfer {
	out := make([]*api.Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = &api.Transfer{From: t.From, To: t.To, Amount: t.Amount}
	}
	return out
}

func toAPIShares(shares []calculator.PersonShare) []*api.PersonShare {
	out := make([]*api.PersonShare, len(shares))
	for i, s := range shares {
		out[i] = &api.PersonShare{Participant: s.Participant, Amount: s.Amount}
	}
	return out
}
