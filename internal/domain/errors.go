package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested catalog resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrCatalogUnreachable indicates the movie metadata API could not be reached
	ErrCatalogUnreachable = errors.New("movie catalog is unreachable")

	// ErrAuthFailed indicates the access token was rejected
	ErrAuthFailed = errors.New("access token is invalid")

	// ErrMissingToken indicates no access token is configured
	ErrMissingToken = errors.New("access token is not configured")

	// ErrEmptyQuery indicates a search was requested without a query
	ErrEmptyQuery = errors.New("search query is empty")
)
