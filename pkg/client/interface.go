package client

import (
	"github.com/DeBrosOfficial/contacts/pkg/record"
)

// DefaultBatchSize is the page size GetFullList requests per round trip.
const DefaultBatchSize = 500

// ListOptions narrows and orders a record listing
type ListOptions struct {
	Sort      string // e.g. "-created"
	Filter    string // service filter expression
	BatchSize int    // GetFullList page size; DefaultBatchSize when zero
	SkipTotal bool   // ask the service not to count matches; totals come back as -1
}

// ListResult is one page of records
type ListResult struct {
	Page       int             `json:"page"`
	PerPage    int             `json:"perPage"`
	TotalItems int             `json:"totalItems"`
	TotalPages int             `json:"totalPages"`
	Items      []record.Record `json:"items"`
}

// AuthResponse is returned by the password and refresh endpoints
type AuthResponse struct {
	Token  string        `json:"token"`
	Record record.Record `json:"record"`
}

// passwordAuthRequest is the body of an auth-with-password call
type passwordAuthRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

// errorBody is the JSON payload the service attaches to failed responses
type errorBody struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}
