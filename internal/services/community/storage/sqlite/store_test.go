package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/diarra2704/oikos/internal/services/community/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestMentorAndMenteeQueries(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	mentors := []storage.MentorRecord{
		{ID: "mentor-1", Name: "Adama", Role: storage.RoleCellLeader, ScopeID: "famille-1", Active: true},
		{ID: "mentor-2", Name: "Mariam", Role: storage.RoleMentor, ScopeID: "famille-1", Active: true},
		{ID: "mentor-3", Name: "Issa", Role: storage.RoleMentor, ScopeID: "famille-2", Active: false},
	}
	for _, mentor := range mentors {
		if err := store.PutMentor(ctx, mentor); err != nil {
			t.Fatalf("put mentor %s: %v", mentor.ID, err)
		}
	}

	lastAttended := time.Date(2026, 8, 16, 10, 0, 0, 0, time.UTC)
	mentees := []storage.MenteeRecord{
		{ID: "ame-1", Name: "Oumar", MentorID: "mentor-1", InvitedByID: "mentor-1", ScopeID: "famille-1", Active: true, LastAttendedAt: &lastAttended},
		{ID: "ame-2", Name: "Awa", MentorID: "mentor-1", ScopeID: "famille-1", Active: true},
		{ID: "ame-3", Name: "Moussa", MentorID: "mentor-1", InvitedByID: "mentor-1", ScopeID: "famille-1", Active: false},
		{ID: "ame-4", Name: "Kadiatou", MentorID: "mentor-2", ScopeID: "famille-1", Active: true},
	}
	for _, mentee := range mentees {
		if err := store.PutMentee(ctx, mentee); err != nil {
			t.Fatalf("put mentee %s: %v", mentee.ID, err)
		}
	}

	mentor, err := store.GetMentor(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("get mentor: %v", err)
	}
	if mentor.Role != storage.RoleCellLeader {
		t.Fatalf("role = %q, want cell_leader", mentor.Role)
	}
	if _, err := store.GetMentor(ctx, "mentor-missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing mentor err = %v, want ErrNotFound", err)
	}

	activeMentors, err := store.ActiveMentorIDs(ctx)
	if err != nil {
		t.Fatalf("active mentors: %v", err)
	}
	if len(activeMentors) != 2 || activeMentors[0] != "mentor-1" || activeMentors[1] != "mentor-2" {
		t.Fatalf("active mentors = %v, want [mentor-1 mentor-2]", activeMentors)
	}

	activeMentees, err := store.ActiveMenteeIDs(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("active mentees: %v", err)
	}
	if len(activeMentees) != 2 {
		t.Fatalf("active mentees = %v, want 2 ids", activeMentees)
	}

	withAttendance, err := store.CountActiveMenteesWithAttendance(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("count with attendance: %v", err)
	}
	if withAttendance != 1 {
		t.Fatalf("with attendance = %d, want 1", withAttendance)
	}

	invited, err := store.CountMenteesInvitedBy(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("count invited: %v", err)
	}
	if invited != 2 {
		t.Fatalf("invited = %d, want 2", invited)
	}
}

func TestCountPresentAtWorship(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	sunday := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	logs := []storage.AttendanceRecord{
		{ID: "a1", MenteeID: "ame-1", EventKind: storage.EventWorship, EventDate: sunday.Add(10 * time.Hour), Present: true},
		{ID: "a2", MenteeID: "ame-2", EventKind: storage.EventWorship, EventDate: sunday, Present: true},
		// Duplicate presence for the same mentee counts once.
		{ID: "a3", MenteeID: "ame-2", EventKind: storage.EventWorship, EventDate: sunday.Add(12 * time.Hour), Present: true},
		// Absences, other event kinds, and other days never count.
		{ID: "a4", MenteeID: "ame-3", EventKind: storage.EventWorship, EventDate: sunday, Present: false},
		{ID: "a5", MenteeID: "ame-4", EventKind: storage.EventCell, EventDate: sunday, Present: true},
		{ID: "a6", MenteeID: "ame-5", EventKind: storage.EventWorship, EventDate: sunday.AddDate(0, 0, -7), Present: true},
	}
	for _, logRow := range logs {
		if err := store.PutAttendance(ctx, logRow); err != nil {
			t.Fatalf("put attendance %s: %v", logRow.ID, err)
		}
	}

	menteeIDs := []string{"ame-1", "ame-2", "ame-3", "ame-4", "ame-5"}
	present, err := store.CountPresentAtWorship(ctx, menteeIDs, sunday)
	if err != nil {
		t.Fatalf("count present: %v", err)
	}
	if present != 2 {
		t.Fatalf("present = %d, want 2", present)
	}

	none, err := store.CountPresentAtWorship(ctx, nil, sunday)
	if err != nil {
		t.Fatalf("count empty: %v", err)
	}
	if none != 0 {
		t.Fatalf("empty present = %d, want 0", none)
	}

	if err := store.PutAttendance(ctx, logs[0]); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("duplicate attendance err = %v, want ErrConflict", err)
	}
}

func TestAttendanceWindowStats(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	if err := store.PutMentee(ctx, storage.MenteeRecord{ID: "ame-1", Name: "Oumar", MentorID: "mentor-1", Active: true}); err != nil {
		t.Fatalf("put mentee: %v", err)
	}
	if err := store.PutMentee(ctx, storage.MenteeRecord{ID: "ame-9", Name: "Autre", MentorID: "mentor-9", Active: true}); err != nil {
		t.Fatalf("put other mentee: %v", err)
	}

	logs := []storage.AttendanceRecord{
		{ID: "w1", MenteeID: "ame-1", EventKind: storage.EventWorship, EventDate: now.AddDate(0, 0, -7), Present: true},
		{ID: "w2", MenteeID: "ame-1", EventKind: storage.EventWorship, EventDate: now.AddDate(0, 0, -14), Present: false},
		{ID: "w3", MenteeID: "ame-1", EventKind: storage.EventWorship, EventDate: now.AddDate(0, -4, 0), Present: true},
		{ID: "w4", MenteeID: "ame-9", EventKind: storage.EventWorship, EventDate: now.AddDate(0, 0, -7), Present: true},
	}
	for _, logRow := range logs {
		if err := store.PutAttendance(ctx, logRow); err != nil {
			t.Fatalf("put attendance %s: %v", logRow.ID, err)
		}
	}

	logged, present, err := store.AttendanceWindowStats(ctx, "mentor-1", now.AddDate(0, -3, 0))
	if err != nil {
		t.Fatalf("window stats: %v", err)
	}
	if logged != 2 || present != 1 {
		t.Fatalf("window stats = (%d, %d), want (2, 1)", logged, present)
	}
}

func TestActivityCounts(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	for i, inviter := range []string{"mentor-1", "mentor-1", "mentor-1", "mentor-2"} {
		err := store.PutInvitation(ctx, storage.InvitationRecord{
			ID:        "inv-" + string(rune('a'+i)),
			InviterID: inviter,
			CreatedAt: now,
		})
		if err != nil {
			t.Fatalf("put invitation %d: %v", i, err)
		}
	}
	invitations, err := store.CountInvitationsByInviter(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("count invitations: %v", err)
	}
	if invitations != 3 {
		t.Fatalf("invitations = %d, want 3", invitations)
	}

	if err := store.PutTestimony(ctx, storage.TestimonyRecord{ID: "t1", MentorID: "mentor-1", Status: storage.TestimonyPending, CreatedAt: now}); err != nil {
		t.Fatalf("put testimony: %v", err)
	}
	has, err := store.HasValidatedTestimony(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("has testimony: %v", err)
	}
	if has {
		t.Fatal("pending testimony reported as validated")
	}
	if err := store.PutTestimony(ctx, storage.TestimonyRecord{ID: "t1", MentorID: "mentor-1", Status: storage.TestimonyValidated, CreatedAt: now}); err != nil {
		t.Fatalf("validate testimony: %v", err)
	}
	has, err = store.HasValidatedTestimony(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("has validated testimony: %v", err)
	}
	if !has {
		t.Fatal("validated testimony not reported")
	}

	submittedAt := now
	reports := []storage.ReportRecord{
		{ID: "r1", AuthorID: "mentor-1", Kind: storage.ReportWeekly, PeriodEnd: now, Status: storage.ReportStatusSubmitted, SubmittedAt: &submittedAt},
		{ID: "r2", AuthorID: "mentor-1", Kind: storage.ReportWeekly, PeriodEnd: now, Status: storage.ReportStatusValidated, SubmittedAt: &submittedAt},
		{ID: "r3", AuthorID: "mentor-1", Kind: storage.ReportWeekly, PeriodEnd: now, Status: storage.ReportStatusDraft},
	}
	for _, report := range reports {
		if err := store.PutReport(ctx, report); err != nil {
			t.Fatalf("put report %s: %v", report.ID, err)
		}
	}
	submitted, err := store.CountSubmittedReports(ctx, "mentor-1")
	if err != nil {
		t.Fatalf("count reports: %v", err)
	}
	if submitted != 2 {
		t.Fatalf("submitted reports = %d, want 2", submitted)
	}
}

func TestEligibleMentors(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	birthDate := time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC)

	mentors := []storage.MentorRecord{
		{ID: "mentor-1", Name: "Adama", Role: storage.RoleCellLeader, Gender: "male", BirthDate: &birthDate, ScopeID: "famille-1", Active: true},
		{ID: "mentor-2", Name: "Mariam", Role: storage.RoleMentor, ScopeID: "famille-1", Active: true},
		{ID: "mentor-3", Name: "Fanta", Role: storage.RoleSupervisor, ScopeID: "famille-1", Active: true},
		{ID: "mentor-4", Name: "Issa", Role: storage.RoleMentor, ScopeID: "famille-2", Active: true},
		{ID: "mentor-5", Name: "Awa", Role: storage.RoleMentor, ScopeID: "famille-1", Active: false},
	}
	for _, mentor := range mentors {
		if err := store.PutMentor(ctx, mentor); err != nil {
			t.Fatalf("put mentor %s: %v", mentor.ID, err)
		}
	}
	for i, mentorID := range []string{"mentor-1", "mentor-1", "mentor-2"} {
		err := store.PutMentee(ctx, storage.MenteeRecord{
			ID:       "ame-" + string(rune('a'+i)),
			Name:     "Mentee",
			MentorID: mentorID,
			Active:   true,
		})
		if err != nil {
			t.Fatalf("put mentee %d: %v", i, err)
		}
	}
	// Inactive mentees never count toward load.
	if err := store.PutMentee(ctx, storage.MenteeRecord{ID: "ame-z", Name: "Parti", MentorID: "mentor-1", Active: false}); err != nil {
		t.Fatalf("put inactive mentee: %v", err)
	}

	pool, err := store.EligibleMentors(ctx, "famille-1")
	if err != nil {
		t.Fatalf("eligible mentors: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("pool = %d mentors, want 2", len(pool))
	}
	if pool[0].Mentor.ID != "mentor-1" || pool[1].Mentor.ID != "mentor-2" {
		t.Fatalf("pool order = %q, %q, want mentor-1 then mentor-2", pool[0].Mentor.ID, pool[1].Mentor.ID)
	}
	if pool[0].ActiveLoad != 2 || pool[1].ActiveLoad != 1 {
		t.Fatalf("loads = %d, %d, want 2 and 1", pool[0].ActiveLoad, pool[1].ActiveLoad)
	}
	if pool[0].Mentor.BirthDate == nil || !pool[0].Mentor.BirthDate.Equal(birthDate) {
		t.Fatalf("birth date = %v, want %v", pool[0].Mentor.BirthDate, birthDate)
	}

	all, err := store.EligibleMentors(ctx, "")
	if err != nil {
		t.Fatalf("eligible mentors all scopes: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all-scope pool = %d mentors, want 3", len(all))
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "community.db")
	store, err := Open(storePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Fatalf("close store: %v", closeErr)
		}
	})
	return store
}
