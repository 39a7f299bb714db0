// Package api defines the request and response messages of the tripsplit
// RPC services. Messages are plain structs carried as JSON by Codec; money
// fields are decimals and encode as JSON strings (e.g. "12.50").
//
// Handlers and clients for the services live in package apiconnect.
package api
