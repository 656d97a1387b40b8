package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/diarra2704/oikos/internal/platform/storage/sqlitemigrate"
	"github.com/diarra2704/oikos/internal/services/recognition/storage"
	"github.com/diarra2704/oikos/internal/services/recognition/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for recognition state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a recognition SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendEntry inserts one immutable ledger row. A dedupe-key collision for the
// same subject is reported as storage.ErrConflict; ledger rows are never
// updated in place.
func (s *Store) AppendEntry(ctx context.Context, record storage.EntryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeEntryRecord(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO ledger_entries (
	id, subject_id, action, points, description, reference_kind, reference_id, dedupe_key, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		normalized.ID,
		normalized.SubjectID,
		normalized.Action,
		normalized.Points,
		normalized.Description,
		normalized.ReferenceKind,
		normalized.ReferenceID,
		normalized.DedupeKey,
		toMillis(normalized.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// SumPointsBySubject returns the sum of all ledger points for one subject.
func (s *Store) SumPointsBySubject(ctx context.Context, subjectID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return 0, fmt.Errorf("subject id is required")
	}

	var total int
	if err := s.sqlDB.QueryRowContext(ctx, `
SELECT COALESCE(SUM(points), 0)
FROM ledger_entries
WHERE subject_id = ?
`, subjectID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum ledger points: %w", err)
	}
	return total, nil
}

// ListEntriesBySubject lists one subject's ledger rows oldest first.
func (s *Store) ListEntriesBySubject(ctx context.Context, subjectID string) ([]storage.EntryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, fmt.Errorf("subject id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, subject_id, action, points, description, reference_kind, reference_id, dedupe_key, created_at
FROM ledger_entries
WHERE subject_id = ?
ORDER BY created_at ASC, id ASC
`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var results []storage.EntryRecord
	for rows.Next() {
		var record storage.EntryRecord
		var createdAt int64
		if err := rows.Scan(
			&record.ID,
			&record.SubjectID,
			&record.Action,
			&record.Points,
			&record.Description,
			&record.ReferenceKind,
			&record.ReferenceID,
			&record.DedupeKey,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry row: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entry rows: %w", err)
	}
	return results, nil
}

// PutBadge inserts one badge catalog row, keeping the existing row when the
// slug is already seeded.
func (s *Store) PutBadge(ctx context.Context, record storage.BadgeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.Slug = strings.TrimSpace(record.Slug)
	record.Name = strings.TrimSpace(record.Name)
	record.Criteria = strings.TrimSpace(record.Criteria)
	if record.ID == "" {
		return fmt.Errorf("badge id is required")
	}
	if record.Slug == "" {
		return fmt.Errorf("badge slug is required")
	}
	if record.Name == "" {
		return fmt.Errorf("badge name is required")
	}
	if record.Criteria == "" {
		record.Criteria = record.Slug
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO badges (id, slug, name, description, icon, color, criteria, threshold)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO NOTHING
`,
		record.ID,
		record.Slug,
		record.Name,
		record.Description,
		record.Icon,
		record.Color,
		record.Criteria,
		record.Threshold,
	)
	if err != nil {
		return fmt.Errorf("put badge: %w", err)
	}
	return nil
}

// ListBadges lists the badge catalog ordered by slug.
func (s *Store) ListBadges(ctx context.Context) ([]storage.BadgeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, slug, name, description, icon, color, criteria, threshold
FROM badges
ORDER BY slug ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var results []storage.BadgeRecord
	for rows.Next() {
		var record storage.BadgeRecord
		if err := rows.Scan(
			&record.ID,
			&record.Slug,
			&record.Name,
			&record.Description,
			&record.Icon,
			&record.Color,
			&record.Criteria,
			&record.Threshold,
		); err != nil {
			return nil, fmt.Errorf("scan badge row: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate badge rows: %w", err)
	}
	return results, nil
}

// InsertAward inserts one permanent badge award. An already-awarded pair is
// reported as storage.ErrConflict; awards are never updated or deleted.
func (s *Store) InsertAward(ctx context.Context, record storage.AwardRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.SubjectID = strings.TrimSpace(record.SubjectID)
	record.BadgeID = strings.TrimSpace(record.BadgeID)
	if record.SubjectID == "" {
		return fmt.Errorf("subject id is required")
	}
	if record.BadgeID == "" {
		return fmt.Errorf("badge id is required")
	}
	if record.AwardedAt.IsZero() {
		return fmt.Errorf("awarded_at is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO badge_awards (subject_id, badge_id, awarded_at)
VALUES (?, ?, ?)
`,
		record.SubjectID,
		record.BadgeID,
		toMillis(record.AwardedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert badge award: %w", err)
	}
	return nil
}

// ListAwardsBySubject lists one subject's badge awards oldest first.
func (s *Store) ListAwardsBySubject(ctx context.Context, subjectID string) ([]storage.AwardRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, fmt.Errorf("subject id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT subject_id, badge_id, awarded_at
FROM badge_awards
WHERE subject_id = ?
ORDER BY awarded_at ASC, badge_id ASC
`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list badge awards: %w", err)
	}
	defer rows.Close()

	var results []storage.AwardRecord
	for rows.Next() {
		var record storage.AwardRecord
		var awardedAt int64
		if err := rows.Scan(&record.SubjectID, &record.BadgeID, &awardedAt); err != nil {
			return nil, fmt.Errorf("scan badge award row: %w", err)
		}
		record.AwardedAt = fromMillis(awardedAt)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate badge award rows: %w", err)
	}
	return results, nil
}

func normalizeEntryRecord(record storage.EntryRecord) (storage.EntryRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.SubjectID = strings.TrimSpace(record.SubjectID)
	record.Action = strings.TrimSpace(record.Action)
	record.Description = strings.TrimSpace(record.Description)
	record.ReferenceKind = strings.TrimSpace(record.ReferenceKind)
	record.ReferenceID = strings.TrimSpace(record.ReferenceID)
	record.DedupeKey = strings.TrimSpace(record.DedupeKey)
	if record.ID == "" {
		return storage.EntryRecord{}, fmt.Errorf("entry id is required")
	}
	if record.SubjectID == "" {
		return storage.EntryRecord{}, fmt.Errorf("subject id is required")
	}
	if record.Action == "" {
		return storage.EntryRecord{}, fmt.Errorf("action is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.EntryRecord{}, fmt.Errorf("created_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}

var (
	_ storage.LedgerStore = (*Store)(nil)
	_ storage.BadgeStore  = (*Store)(nil)
)
