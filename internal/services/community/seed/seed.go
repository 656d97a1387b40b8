// Package seed loads the badge catalog and optional demo community data.
// Seeding is idempotent: catalog rows insert-or-ignore by slug and demo rows
// upsert by fixed ids, so re-runs converge on the same state.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diarra2704/oikos/internal/platform/id"
	"github.com/diarra2704/oikos/internal/services/community/storage"
	"github.com/diarra2704/oikos/internal/services/recognition/domain"
)

// BadgeCatalogStore is the subset of badge persistence seeding needs.
type BadgeCatalogStore interface {
	PutBadge(ctx context.Context, badge domain.Badge) error
}

// Badges seeds the default badge catalog. Returns the number of catalog rows
// written (existing slugs are kept untouched by the store).
func Badges(ctx context.Context, store BadgeCatalogStore) (int, error) {
	if store == nil {
		return 0, domain.ErrBadgeStoreNotConfigured
	}
	count := 0
	for _, badge := range domain.DefaultBadgeCatalog() {
		badgeID, err := id.NewID()
		if err != nil {
			return count, fmt.Errorf("mint badge id: %w", err)
		}
		badge.ID = badgeID
		if err := store.PutBadge(ctx, badge); err != nil {
			return count, fmt.Errorf("seed badge %s: %w", badge.Slug, err)
		}
		count++
	}
	return count, nil
}

// Demo loads a small discipleship family with enough activity to exercise the
// attendance tally, badge rules, and scorer. now anchors the relative dates.
func Demo(ctx context.Context, store storage.Store, now time.Time) error {
	if store == nil {
		return fmt.Errorf("community store is required")
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	for _, mentor := range demoMentors(now) {
		if err := store.PutMentor(ctx, mentor); err != nil {
			return fmt.Errorf("seed mentor %s: %w", mentor.ID, err)
		}
	}
	for _, mentee := range demoMentees(now) {
		if err := store.PutMentee(ctx, mentee); err != nil {
			return fmt.Errorf("seed mentee %s: %w", mentee.ID, err)
		}
	}
	for _, logRow := range demoAttendance(now) {
		err := store.PutAttendance(ctx, logRow)
		if err != nil && !errors.Is(err, storage.ErrConflict) {
			return fmt.Errorf("seed attendance %s: %w", logRow.ID, err)
		}
	}
	for _, invitation := range demoInvitations(now) {
		if err := store.PutInvitation(ctx, invitation); err != nil {
			return fmt.Errorf("seed invitation %s: %w", invitation.ID, err)
		}
	}
	for _, testimony := range demoTestimonies(now) {
		if err := store.PutTestimony(ctx, testimony); err != nil {
			return fmt.Errorf("seed testimony %s: %w", testimony.ID, err)
		}
	}
	for _, report := range demoReports(now) {
		if err := store.PutReport(ctx, report); err != nil {
			return fmt.Errorf("seed report %s: %w", report.ID, err)
		}
	}
	return nil
}

const demoScope = "famille-nord"

func birthday(now time.Time, age int) *time.Time {
	value := now.AddDate(-age, -1, 0)
	return &value
}

func demoMentors(now time.Time) []storage.MentorRecord {
	return []storage.MentorRecord{
		{
			ID:        "mentor-adama",
			Name:      "Adama Traoré",
			Role:      storage.RoleCellLeader,
			Gender:    "male",
			BirthDate: birthday(now, 34),
			ScopeID:   demoScope,
			CellID:    "cellule-1",
			Active:    true,
		},
		{
			ID:        "mentor-mariam",
			Name:      "Mariam Koné",
			Role:      storage.RoleMentor,
			Gender:    "female",
			BirthDate: birthday(now, 27),
			ScopeID:   demoScope,
			CellID:    "cellule-1",
			Active:    true,
		},
		{
			ID:      "mentor-issa",
			Name:    "Issa Diallo",
			Role:    storage.RoleMentor,
			ScopeID: demoScope,
			CellID:  "cellule-2",
			Active:  true,
		},
		{
			ID:        "mentor-fanta",
			Name:      "Fanta Keïta",
			Role:      storage.RoleSupervisor,
			Gender:    "female",
			BirthDate: birthday(now, 45),
			ScopeID:   demoScope,
			Active:    true,
		},
	}
}

func demoMentees(now time.Time) []storage.MenteeRecord {
	lastSunday := mostRecentSunday(now)
	return []storage.MenteeRecord{
		{ID: "ame-01", Name: "Oumar Sangaré", MentorID: "mentor-adama", InvitedByID: "mentor-adama", ScopeID: demoScope, Active: true, LastAttendedAt: &lastSunday},
		{ID: "ame-02", Name: "Awa Coulibaly", MentorID: "mentor-adama", InvitedByID: "mentor-adama", ScopeID: demoScope, Active: true, LastAttendedAt: &lastSunday},
		{ID: "ame-03", Name: "Moussa Dembélé", MentorID: "mentor-adama", InvitedByID: "mentor-mariam", ScopeID: demoScope, Active: true},
		{ID: "ame-04", Name: "Kadiatou Touré", MentorID: "mentor-mariam", InvitedByID: "mentor-adama", ScopeID: demoScope, Active: true, LastAttendedAt: &lastSunday},
		{ID: "ame-05", Name: "Sékou Camara", MentorID: "mentor-mariam", ScopeID: demoScope, Active: true},
		{ID: "ame-06", Name: "Aminata Cissé", MentorID: "mentor-issa", ScopeID: demoScope, Active: true, LastAttendedAt: &lastSunday},
		{ID: "ame-07", Name: "Bakary Sidibé", MentorID: "mentor-issa", ScopeID: demoScope, Active: false},
	}
}

func demoAttendance(now time.Time) []storage.AttendanceRecord {
	var rows []storage.AttendanceRecord
	sunday := mostRecentSunday(now)
	presentByWeek := map[string][]bool{
		"ame-01": {true, true, true, true},
		"ame-02": {true, true, false, true},
		"ame-03": {false, true, true, true},
		"ame-04": {true, true, true, true},
		"ame-06": {true, false, true, false},
	}
	for menteeID, weeks := range presentByWeek {
		for week, present := range weeks {
			eventDate := sunday.AddDate(0, 0, -7*week)
			rows = append(rows, storage.AttendanceRecord{
				ID:         fmt.Sprintf("att-%s-%s", menteeID, eventDate.Format("2006-01-02")),
				MenteeID:   menteeID,
				EventKind:  storage.EventWorship,
				EventDate:  eventDate,
				Present:    present,
				RecordedBy: "mentor-fanta",
			})
		}
	}
	return rows
}

func demoInvitations(now time.Time) []storage.InvitationRecord {
	names := []string{"Fatou", "Lamine", "Rokia", "Daouda", "Salif"}
	rows := make([]storage.InvitationRecord, 0, len(names)+2)
	for i, name := range names {
		rows = append(rows, storage.InvitationRecord{
			ID:          fmt.Sprintf("inv-adama-%02d", i+1),
			InviterID:   "mentor-adama",
			InviteeName: name,
			Attended:    i%2 == 0,
			CreatedAt:   now.AddDate(0, 0, -10*i),
		})
	}
	rows = append(rows,
		storage.InvitationRecord{ID: "inv-mariam-01", InviterID: "mentor-mariam", InviteeName: "Binta", Attended: true, CreatedAt: now.AddDate(0, 0, -21)},
		storage.InvitationRecord{ID: "inv-mariam-02", InviterID: "mentor-mariam", InviteeName: "Yacouba", Attended: false, CreatedAt: now.AddDate(0, 0, -14)},
	)
	return rows
}

func demoTestimonies(now time.Time) []storage.TestimonyRecord {
	return []storage.TestimonyRecord{
		{ID: "tem-01", MentorID: "mentor-mariam", Status: storage.TestimonyValidated, CreatedAt: now.AddDate(0, -1, 0)},
		{ID: "tem-02", MentorID: "mentor-issa", Status: storage.TestimonyPending, CreatedAt: now.AddDate(0, 0, -3)},
	}
}

func demoReports(now time.Time) []storage.ReportRecord {
	var rows []storage.ReportRecord
	for week := 1; week <= 11; week++ {
		periodEnd := mostRecentSunday(now).AddDate(0, 0, -7*week)
		submittedAt := periodEnd.Add(18 * time.Hour)
		rows = append(rows, storage.ReportRecord{
			ID:          fmt.Sprintf("rap-adama-%02d", week),
			AuthorID:    "mentor-adama",
			Kind:        storage.ReportWeekly,
			PeriodEnd:   periodEnd,
			Status:      storage.ReportStatusSubmitted,
			SubmittedAt: &submittedAt,
		})
	}
	draftEnd := mostRecentSunday(now)
	rows = append(rows, storage.ReportRecord{
		ID:        "rap-mariam-01",
		AuthorID:  "mentor-mariam",
		Kind:      storage.ReportWeekly,
		PeriodEnd: draftEnd,
		Status:    storage.ReportStatusDraft,
	})
	return rows
}

// mostRecentSunday truncates to the most recent Sunday at midnight UTC.
func mostRecentSunday(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday()))
}
