// Package models defines the core domain models for tripsplit.
//
// # Models
//
//   - User: registered account; its ID is what trips list as a member
//   - Trip: a shared trip with an ordered member list
//   - Expense: money one member paid on behalf of some members
//   - Payment: money one member already sent to another to settle up
//
// Members are plain participant IDs. A member is usually a user ID, but a
// trip may also list people who never signed up (by name), so nothing in the
// models requires a member to have an account.
//
// # Money
//
// Amounts are shopspring decimals, never floats. Balances and suggested
// transfers are derived by the calculator package and are not stored.
package models
