// Package storage persists subscribers behind a single Store interface with
// interchangeable backends: a JSON file, a Postgres table or a Redis hash.
//
// Every backend enforces email uniqueness itself with an atomic conditional
// insert, so callers never need their own locking. Add reports a duplicate as
// (false, nil) and a backend failure as a non-nil error.
package storage

import (
	"context"

	"ledgerly/models"
)

type Store interface {
	// Exists reports whether a subscriber with exactly this email is stored.
	Exists(ctx context.Context, email string) (bool, error)
	// Add inserts the subscriber unless its email is already present.
	Add(ctx context.Context, sub models.Subscriber) (bool, error)
	// All returns every stored subscriber. Order is backend specific.
	All(ctx context.Context) ([]models.Subscriber, error)
	Ping(ctx context.Context) error
	Close() error
}
