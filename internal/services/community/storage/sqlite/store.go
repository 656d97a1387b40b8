// Package sqlite provides the SQLite-backed community store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/diarra2704/oikos/internal/platform/storage/sqlitemigrate"
	"github.com/diarra2704/oikos/internal/services/community/storage"
	"github.com/diarra2704/oikos/internal/services/community/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for the community read-model.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toMillisPtr(value *time.Time) any {
	if value == nil {
		return nil
	}
	return toMillis(*value)
}

func fromMillisPtr(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	ts := fromMillis(value.Int64)
	return &ts
}

// Open opens a community SQLite store at the provided path.
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

// PutMentor upserts one mentor row by id.
func (s *Store) PutMentor(ctx context.Context, record storage.MentorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.Name = strings.TrimSpace(record.Name)
	if record.ID == "" {
		return fmt.Errorf("mentor id is required")
	}
	if record.Name == "" {
		return fmt.Errorf("mentor name is required")
	}
	if record.Role == "" {
		record.Role = storage.RoleMentor
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO mentors (id, name, role, gender, birth_date, scope_id, cell_id, active)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	role = excluded.role,
	gender = excluded.gender,
	birth_date = excluded.birth_date,
	scope_id = excluded.scope_id,
	cell_id = excluded.cell_id,
	active = excluded.active
`,
		record.ID,
		record.Name,
		record.Role,
		record.Gender,
		toMillisPtr(record.BirthDate),
		record.ScopeID,
		record.CellID,
		boolToInt(record.Active),
	)
	if err != nil {
		return fmt.Errorf("put mentor: %w", err)
	}
	return nil
}

// PutMentee upserts one mentee row by id.
func (s *Store) PutMentee(ctx context.Context, record storage.MenteeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.Name = strings.TrimSpace(record.Name)
	if record.ID == "" {
		return fmt.Errorf("mentee id is required")
	}
	if record.Name == "" {
		return fmt.Errorf("mentee name is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO mentees (id, name, mentor_id, invited_by_id, scope_id, active, last_attended_at, impact_status, service_start_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	mentor_id = excluded.mentor_id,
	invited_by_id = excluded.invited_by_id,
	scope_id = excluded.scope_id,
	active = excluded.active,
	last_attended_at = excluded.last_attended_at,
	impact_status = excluded.impact_status,
	service_start_at = excluded.service_start_at
`,
		record.ID,
		record.Name,
		record.MentorID,
		record.InvitedByID,
		record.ScopeID,
		boolToInt(record.Active),
		toMillisPtr(record.LastAttendedAt),
		record.ImpactStatus,
		toMillisPtr(record.ServiceStartAt),
	)
	if err != nil {
		return fmt.Errorf("put mentee: %w", err)
	}
	return nil
}

// PutAttendance inserts one attendance log row. Log rows are immutable;
// re-inserting an id is a conflict.
func (s *Store) PutAttendance(ctx context.Context, record storage.AttendanceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.MenteeID = strings.TrimSpace(record.MenteeID)
	if record.ID == "" {
		return fmt.Errorf("attendance id is required")
	}
	if record.MenteeID == "" {
		return fmt.Errorf("attendance mentee id is required")
	}
	if record.EventKind == "" {
		record.EventKind = storage.EventWorship
	}
	if record.EventDate.IsZero() {
		return fmt.Errorf("attendance event date is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO attendance_log (id, mentee_id, event_kind, event_date, present, recorded_by)
VALUES (?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.MenteeID,
		record.EventKind,
		toMillis(record.EventDate),
		boolToInt(record.Present),
		record.RecordedBy,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put attendance: %w", err)
	}
	return nil
}

// PutInvitation upserts one invitation row by id.
func (s *Store) PutInvitation(ctx context.Context, record storage.InvitationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.InviterID = strings.TrimSpace(record.InviterID)
	if record.ID == "" {
		return fmt.Errorf("invitation id is required")
	}
	if record.InviterID == "" {
		return fmt.Errorf("invitation inviter id is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO invitations (id, inviter_id, invitee_name, attended, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	invitee_name = excluded.invitee_name,
	attended = excluded.attended
`,
		record.ID,
		record.InviterID,
		record.InviteeName,
		boolToInt(record.Attended),
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put invitation: %w", err)
	}
	return nil
}

// PutTestimony upserts one testimony row by id.
func (s *Store) PutTestimony(ctx context.Context, record storage.TestimonyRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.MentorID = strings.TrimSpace(record.MentorID)
	if record.ID == "" {
		return fmt.Errorf("testimony id is required")
	}
	if record.MentorID == "" {
		return fmt.Errorf("testimony mentor id is required")
	}
	if record.Status == "" {
		record.Status = storage.TestimonyPending
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO testimonies (id, mentor_id, status, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	status = excluded.status
`,
		record.ID,
		record.MentorID,
		record.Status,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put testimony: %w", err)
	}
	return nil
}

// PutReport upserts one report row by id.
func (s *Store) PutReport(ctx context.Context, record storage.ReportRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.AuthorID = strings.TrimSpace(record.AuthorID)
	if record.ID == "" {
		return fmt.Errorf("report id is required")
	}
	if record.AuthorID == "" {
		return fmt.Errorf("report author id is required")
	}
	if record.Kind == "" {
		record.Kind = storage.ReportWeekly
	}
	if record.Status == "" {
		record.Status = storage.ReportStatusDraft
	}
	if record.PeriodEnd.IsZero() {
		return fmt.Errorf("report period end is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO reports (id, author_id, kind, period_end, status, submitted_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	status = excluded.status,
	submitted_at = excluded.submitted_at
`,
		record.ID,
		record.AuthorID,
		record.Kind,
		toMillis(record.PeriodEnd),
		record.Status,
		toMillisPtr(record.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("put report: %w", err)
	}
	return nil
}

// GetMentor returns one mentor by id.
func (s *Store) GetMentor(ctx context.Context, mentorID string) (storage.MentorRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.MentorRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.MentorRecord{}, fmt.Errorf("storage is not configured")
	}
	mentorID = strings.TrimSpace(mentorID)
	if mentorID == "" {
		return storage.MentorRecord{}, fmt.Errorf("mentor id is required")
	}

	record, err := scanMentor(s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, role, gender, birth_date, scope_id, cell_id, active
FROM mentors
WHERE id = ?
`, mentorID))
	if errors.Is(err, sql.ErrNoRows) {
		return storage.MentorRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.MentorRecord{}, fmt.Errorf("get mentor: %w", err)
	}
	return record, nil
}

// ActiveMentorIDs lists ids of all active mentors ordered by id.
func (s *Store) ActiveMentorIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id FROM mentors WHERE active = 1 ORDER BY id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list active mentors: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows, "active mentor")
}

// ActiveMenteeIDs lists ids of one mentor's active mentees ordered by id.
func (s *Store) ActiveMenteeIDs(ctx context.Context, mentorID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	mentorID = strings.TrimSpace(mentorID)
	if mentorID == "" {
		return nil, fmt.Errorf("mentor id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id FROM mentees WHERE mentor_id = ? AND active = 1 ORDER BY id ASC
`, mentorID)
	if err != nil {
		return nil, fmt.Errorf("list active mentees: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows, "active mentee")
}

// CountPresentAtWorship counts the distinct mentees among menteeIDs with a
// present worship log on the eventDate calendar day (UTC).
func (s *Store) CountPresentAtWorship(ctx context.Context, menteeIDs []string, eventDate time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if len(menteeIDs) == 0 {
		return 0, nil
	}
	if eventDate.IsZero() {
		return 0, fmt.Errorf("event date is required")
	}

	day := eventDate.UTC().Truncate(24 * time.Hour)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(menteeIDs)), ", ")
	args := make([]any, 0, len(menteeIDs)+3)
	for _, menteeID := range menteeIDs {
		args = append(args, menteeID)
	}
	args = append(args, storage.EventWorship, toMillis(day), toMillis(day.Add(24*time.Hour)))

	var count int
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(DISTINCT mentee_id)
FROM attendance_log
WHERE mentee_id IN (`+placeholders+`)
  AND event_kind = ?
  AND present = 1
  AND event_date >= ? AND event_date < ?
`, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count present at worship: %w", err)
	}
	return count, nil
}

// CountInvitationsByInviter counts invitations authored by one mentor.
func (s *Store) CountInvitationsByInviter(ctx context.Context, mentorID string) (int, error) {
	return s.countBy(ctx, `SELECT COUNT(*) FROM invitations WHERE inviter_id = ?`, mentorID, "count invitations")
}

// CountActiveMenteesWithAttendance counts one mentor's active mentees with
// any recorded attendance.
func (s *Store) CountActiveMenteesWithAttendance(ctx context.Context, mentorID string) (int, error) {
	return s.countBy(ctx, `
SELECT COUNT(*)
FROM mentees
WHERE mentor_id = ? AND active = 1 AND last_attended_at IS NOT NULL
`, mentorID, "count mentees with attendance")
}

// AttendanceWindowStats aggregates attendance log rows for one mentor's
// mentees since the given instant.
func (s *Store) AttendanceWindowStats(ctx context.Context, mentorID string, since time.Time) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, 0, fmt.Errorf("storage is not configured")
	}
	mentorID = strings.TrimSpace(mentorID)
	if mentorID == "" {
		return 0, 0, fmt.Errorf("mentor id is required")
	}

	var logged, present int
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(attendance_log.present), 0)
FROM attendance_log
JOIN mentees ON mentees.id = attendance_log.mentee_id
WHERE mentees.mentor_id = ? AND attendance_log.event_date >= ?
`, mentorID, toMillis(since)).Scan(&logged, &present)
	if err != nil {
		return 0, 0, fmt.Errorf("attendance window stats: %w", err)
	}
	return logged, present, nil
}

// HasValidatedTestimony reports whether one mentor has a validated testimony.
func (s *Store) HasValidatedTestimony(ctx context.Context, mentorID string) (bool, error) {
	count, err := s.countBy(ctx, `
SELECT COUNT(*) FROM testimonies WHERE mentor_id = ? AND status = 'validated'
`, mentorID, "count validated testimonies")
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountMenteesInvitedBy counts mentees whose record credits one mentor as
// their inviter.
func (s *Store) CountMenteesInvitedBy(ctx context.Context, mentorID string) (int, error) {
	return s.countBy(ctx, `SELECT COUNT(*) FROM mentees WHERE invited_by_id = ?`, mentorID, "count invited mentees")
}

// CountSubmittedReports counts one mentor's non-draft reports.
func (s *Store) CountSubmittedReports(ctx context.Context, mentorID string) (int, error) {
	return s.countBy(ctx, `
SELECT COUNT(*) FROM reports WHERE author_id = ? AND status <> 'draft'
`, mentorID, "count submitted reports")
}

// EligibleMentors lists active mentors with the mentor or cell-leader role,
// optionally restricted to one scope, each decorated with its current active
// mentee load. Ordered by id for deterministic pools.
func (s *Store) EligibleMentors(ctx context.Context, scopeID string) ([]storage.MentorPoolRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `
SELECT id, name, role, gender, birth_date, scope_id, cell_id, active,
	(SELECT COUNT(*) FROM mentees WHERE mentees.mentor_id = mentors.id AND mentees.active = 1) AS active_load
FROM mentors
WHERE active = 1 AND role IN (?, ?)
`
	args := []any{storage.RoleMentor, storage.RoleCellLeader}
	scopeID = strings.TrimSpace(scopeID)
	if scopeID != "" {
		query += ` AND scope_id = ?`
		args = append(args, scopeID)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list eligible mentors: %w", err)
	}
	defer rows.Close()

	var results []storage.MentorPoolRecord
	for rows.Next() {
		var record storage.MentorPoolRecord
		var birthDate sql.NullInt64
		var active int
		if err := rows.Scan(
			&record.Mentor.ID,
			&record.Mentor.Name,
			&record.Mentor.Role,
			&record.Mentor.Gender,
			&birthDate,
			&record.Mentor.ScopeID,
			&record.Mentor.CellID,
			&active,
			&record.ActiveLoad,
		); err != nil {
			return nil, fmt.Errorf("scan eligible mentor row: %w", err)
		}
		record.Mentor.BirthDate = fromMillisPtr(birthDate)
		record.Mentor.Active = active != 0
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate eligible mentor rows: %w", err)
	}
	return results, nil
}

func (s *Store) countBy(ctx context.Context, query, mentorID, label string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	mentorID = strings.TrimSpace(mentorID)
	if mentorID == "" {
		return 0, fmt.Errorf("mentor id is required")
	}

	var count int
	if err := s.sqlDB.QueryRowContext(ctx, query, mentorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", label, err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMentor(row rowScanner) (storage.MentorRecord, error) {
	var record storage.MentorRecord
	var birthDate sql.NullInt64
	var active int
	if err := row.Scan(
		&record.ID,
		&record.Name,
		&record.Role,
		&record.Gender,
		&birthDate,
		&record.ScopeID,
		&record.CellID,
		&active,
	); err != nil {
		return storage.MentorRecord{}, err
	}
	record.BirthDate = fromMillisPtr(birthDate)
	record.Active = active != 0
	return record, nil
}

func collectIDs(rows *sql.Rows, label string) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", label, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", label, err)
	}
	return ids, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}

var _ storage.Store = (*Store)(nil)
