// Package app wires the recognition domain services to their sqlite-backed
// stores.
package app

import (
	"context"
	"errors"

	"github.com/diarra2704/oikos/internal/services/recognition/domain"
	"github.com/diarra2704/oikos/internal/services/recognition/storage"
)

// LedgerStoreAdapter exposes a storage.LedgerStore as a domain.LedgerStore.
type LedgerStoreAdapter struct {
	store storage.LedgerStore
}

// NewLedgerStoreAdapter wraps a ledger store for domain use.
func NewLedgerStoreAdapter(store storage.LedgerStore) *LedgerStoreAdapter {
	return &LedgerStoreAdapter{store: store}
}

func (a *LedgerStoreAdapter) AppendEntry(ctx context.Context, entry domain.Entry) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.AppendEntry(ctx, toEntryRecord(entry)))
}

func (a *LedgerStoreAdapter) SumPointsBySubject(ctx context.Context, subjectID string) (int, error) {
	if a == nil || a.store == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	total, err := a.store.SumPointsBySubject(ctx, subjectID)
	if err != nil {
		return 0, mapStorageError(err)
	}
	return total, nil
}

func (a *LedgerStoreAdapter) ListEntriesBySubject(ctx context.Context, subjectID string) ([]domain.Entry, error) {
	if a == nil || a.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.store.ListEntriesBySubject(ctx, subjectID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	entries := make([]domain.Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, toDomainEntry(record))
	}
	return entries, nil
}

// BadgeStoreAdapter exposes a storage.BadgeStore as a domain.BadgeStore.
type BadgeStoreAdapter struct {
	store storage.BadgeStore
}

// NewBadgeStoreAdapter wraps a badge store for domain use.
func NewBadgeStoreAdapter(store storage.BadgeStore) *BadgeStoreAdapter {
	return &BadgeStoreAdapter{store: store}
}

func (a *BadgeStoreAdapter) ListBadges(ctx context.Context) ([]domain.Badge, error) {
	if a == nil || a.store == nil {
		return nil, domain.ErrBadgeStoreNotConfigured
	}
	records, err := a.store.ListBadges(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	badges := make([]domain.Badge, 0, len(records))
	for _, record := range records {
		badges = append(badges, toDomainBadge(record))
	}
	return badges, nil
}

func (a *BadgeStoreAdapter) ListAwardsBySubject(ctx context.Context, subjectID string) ([]domain.BadgeAward, error) {
	if a == nil || a.store == nil {
		return nil, domain.ErrBadgeStoreNotConfigured
	}
	records, err := a.store.ListAwardsBySubject(ctx, subjectID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	awards := make([]domain.BadgeAward, 0, len(records))
	for _, record := range records {
		awards = append(awards, domain.BadgeAward{
			SubjectID: record.SubjectID,
			BadgeID:   record.BadgeID,
			AwardedAt: record.AwardedAt,
		})
	}
	return awards, nil
}

func (a *BadgeStoreAdapter) InsertAward(ctx context.Context, award domain.BadgeAward) error {
	if a == nil || a.store == nil {
		return domain.ErrBadgeStoreNotConfigured
	}
	return mapStorageError(a.store.InsertAward(ctx, storage.AwardRecord{
		SubjectID: award.SubjectID,
		BadgeID:   award.BadgeID,
		AwardedAt: award.AwardedAt,
	}))
}

// PutBadge seeds one catalog badge. Re-seeding an existing slug is a no-op.
func (a *BadgeStoreAdapter) PutBadge(ctx context.Context, badge domain.Badge) error {
	if a == nil || a.store == nil {
		return domain.ErrBadgeStoreNotConfigured
	}
	return mapStorageError(a.store.PutBadge(ctx, storage.BadgeRecord{
		ID:          badge.ID,
		Slug:        badge.Slug,
		Name:        badge.Name,
		Description: badge.Description,
		Icon:        badge.Icon,
		Color:       badge.Color,
		Criteria:    badge.Criteria,
		Threshold:   badge.Threshold,
	}))
}

func toEntryRecord(entry domain.Entry) storage.EntryRecord {
	record := storage.EntryRecord{
		ID:          entry.ID,
		SubjectID:   entry.SubjectID,
		Action:      string(entry.Action),
		Points:      entry.Points,
		Description: entry.Description,
		DedupeKey:   entry.DedupeKey,
		CreatedAt:   entry.CreatedAt,
	}
	if entry.Reference != nil {
		record.ReferenceKind = entry.Reference.Kind
		record.ReferenceID = entry.Reference.ID
	}
	return record
}

func toDomainEntry(record storage.EntryRecord) domain.Entry {
	entry := domain.Entry{
		ID:          record.ID,
		SubjectID:   record.SubjectID,
		Action:      domain.Action(record.Action),
		Points:      record.Points,
		Description: record.Description,
		DedupeKey:   record.DedupeKey,
		CreatedAt:   record.CreatedAt,
	}
	if record.ReferenceKind != "" || record.ReferenceID != "" {
		entry.Reference = &domain.Reference{
			Kind: record.ReferenceKind,
			ID:   record.ReferenceID,
		}
	}
	return entry
}

func toDomainBadge(record storage.BadgeRecord) domain.Badge {
	return domain.Badge{
		ID:          record.ID,
		Slug:        record.Slug,
		Name:        record.Name,
		Description: record.Description,
		Icon:        record.Icon,
		Color:       record.Color,
		Criteria:    record.Criteria,
		Threshold:   record.Threshold,
	}
}

func mapStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return domain.ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return domain.ErrConflict
	default:
		return err
	}
}
