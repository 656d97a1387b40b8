package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested recognition record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
)

// EntryRecord stores one immutable point-earning ledger row.
type EntryRecord struct {
	ID            string
	SubjectID     string
	Action        string
	Points        int
	Description   string
	ReferenceKind string
	ReferenceID   string
	DedupeKey     string
	CreatedAt     time.Time
}

// BadgeRecord stores one badge catalog row. The catalog is seeded reference
// data; rows are never updated after seeding.
type BadgeRecord struct {
	ID          string
	Slug        string
	Name        string
	Description string
	Icon        string
	Color       string
	Criteria    string
	Threshold   int
}

// AwardRecord stores one permanent badge award for a subject.
type AwardRecord struct {
	SubjectID string
	BadgeID   string
	AwardedAt time.Time
}

// LedgerStore persists the append-only points ledger.
type LedgerStore interface {
	AppendEntry(ctx context.Context, record EntryRecord) error
	SumPointsBySubject(ctx context.Context, subjectID string) (int, error)
	ListEntriesBySubject(ctx context.Context, subjectID string) ([]EntryRecord, error)
}

// BadgeStore persists the badge catalog and badge awards.
type BadgeStore interface {
	PutBadge(ctx context.Context, record BadgeRecord) error
	ListBadges(ctx context.Context) ([]BadgeRecord, error)
	InsertAward(ctx context.Context, record AwardRecord) error
	ListAwardsBySubject(ctx context.Context, subjectID string) ([]AwardRecord, error)
}
