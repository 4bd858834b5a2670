package store

import "errors"

var (
	// ErrConnection means the store is unreachable or rejected the credentials
	ErrConnection = errors.New("connection error")

	// ErrQuery means a statement was rejected or its rows could not be decoded.
	// Duplicate ids on insert fall in this category.
	ErrQuery = errors.New("query error")
)
