// Package storage defines the key-value persistence port the study engine
// writes its state through. Values are JSON documents keyed by fixed strings,
// mirroring the browser-local storage the data model was designed around.
// Callers follow a read-modify-write discipline: read the whole value, mutate
// a copy, write the whole value back.
package storage

import "context"

// Store is the persistence port. Get reports ok=false when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Well-known keys owned by the study engine.
const (
	KeyProgress   = "cissp_quiz_progress"
	KeySettings   = "cissp_quiz_settings"
	KeyBookmarks  = "cissp_bookmarked_questions"
	KeySeen       = "cissp_seen_questions"
	KeySeenExpiry = "cissp_seen_questions_expiry"
)
