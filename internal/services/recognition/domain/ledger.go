package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/diarra2704/oikos/internal/platform/id"
)

var (
	// ErrNotFound indicates a recognition record was not found.
	ErrNotFound = errors.New("recognition record not found")
	// ErrConflict indicates a write conflicted with existing uniqueness constraints.
	ErrConflict = errors.New("recognition record conflict")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("recognition store is not configured")
	// ErrSubjectRequired indicates subject identity is required.
	ErrSubjectRequired = errors.New("subject id is required")
	// ErrUnknownAction indicates an action outside the ledger vocabulary.
	ErrUnknownAction = errors.New("unknown ledger action")
	// ErrEventDateRequired indicates a tally event date is required.
	ErrEventDateRequired = errors.New("event date is required")
	// ErrAttendanceSourceNotConfigured indicates the tally is missing its
	// community read-model wiring.
	ErrAttendanceSourceNotConfigured = errors.New("attendance source is not configured")
)

// Reference points a ledger entry at the entity that earned it.
type Reference struct {
	Kind string
	ID   string
}

// Entry is one immutable point-earning ledger record.
type Entry struct {
	ID          string
	SubjectID   string
	Action      Action
	Points      int
	Description string
	Reference   *Reference
	DedupeKey   string
	CreatedAt   time.Time
}

// RecordInput describes one point-earning event to append.
type RecordInput struct {
	SubjectID   string
	Action      Action
	Points      int
	Description string
	Reference   *Reference
}

// Progression summarizes a subject's position in the tier ladder.
type Progression struct {
	Total         int
	CurrentTier   *Tier
	NextTier      *Tier
	PercentToNext int
}

// LedgerStore is the domain persistence boundary for ledger behavior.
type LedgerStore interface {
	AppendEntry(ctx context.Context, entry Entry) error
	SumPointsBySubject(ctx context.Context, subjectID string) (int, error)
	ListEntriesBySubject(ctx context.Context, subjectID string) ([]Entry, error)
}

// SubjectSource lists the subjects (active mentors) batch sweeps walk.
type SubjectSource interface {
	ActiveMentorIDs(ctx context.Context) ([]string, error)
}

// AttendanceSource supplies the mentee attendance data the weekly tally reads.
type AttendanceSource interface {
	SubjectSource
	ActiveMenteeIDs(ctx context.Context, mentorID string) ([]string, error)
	CountPresentAtWorship(ctx context.Context, menteeIDs []string, eventDate time.Time) (int, error)
}

// Ledger records point-earning events and answers aggregate queries.
type Ledger struct {
	store      LedgerStore
	attendance AttendanceSource
	clock      func() time.Time
	newID      func() (string, error)
}

// NewLedger constructs the points ledger service. The attendance source may be
// nil when the weekly tally is not used.
func NewLedger(store LedgerStore, attendance AttendanceSource, clock func() time.Time, newID func() (string, error)) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Ledger{
		store:      store,
		attendance: attendance,
		clock:      clock,
		newID:      newID,
	}
}

// Record appends one point-earning entry. Re-recording an event with the same
// subject, action, and reference is the expected no-op path and returns
// (nil, nil). Entries without a reference are always appended.
func (l *Ledger) Record(ctx context.Context, input RecordInput) (*Entry, error) {
	if l == nil || l.store == nil {
		return nil, ErrStoreNotConfigured
	}
	subjectID := strings.TrimSpace(input.SubjectID)
	if subjectID == "" {
		return nil, ErrSubjectRequired
	}
	if !KnownAction(input.Action) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, input.Action)
	}

	dedupeKey := ""
	if input.Reference != nil {
		dedupeKey = referenceDedupeKey(input.Action, *input.Reference)
	}
	return l.append(ctx, subjectID, input.Action, input.Points, input.Description, input.Reference, dedupeKey)
}

// Total returns the sum of all ledger points for one subject. The total is
// always computed from the stored entries, never cached.
func (l *Ledger) Total(ctx context.Context, subjectID string) (int, error) {
	if l == nil || l.store == nil {
		return 0, ErrStoreNotConfigured
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return 0, ErrSubjectRequired
	}
	return l.store.SumPointsBySubject(ctx, subjectID)
}

// CurrentTier returns the tier reached by one subject, or nil below the first
// threshold.
func (l *Ledger) CurrentTier(ctx context.Context, subjectID string) (*Tier, error) {
	total, err := l.Total(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return TierForTotal(total), nil
}

// Progression reports total, current and next tier, and percentage progress
// toward the next threshold (100 once the top tier is reached).
func (l *Ledger) Progression(ctx context.Context, subjectID string) (Progression, error) {
	total, err := l.Total(ctx, subjectID)
	if err != nil {
		return Progression{}, err
	}
	progression := Progression{
		Total:         total,
		CurrentTier:   TierForTotal(total),
		NextTier:      NextTierAfter(total),
		PercentToNext: 100,
	}
	if progression.NextTier != nil {
		progression.PercentToNext = int(math.Round(float64(total) / float64(progression.NextTier.Threshold) * 100))
	}
	return progression, nil
}

// Entries lists one subject's ledger entries oldest first.
func (l *Ledger) Entries(ctx context.Context, subjectID string) ([]Entry, error) {
	if l == nil || l.store == nil {
		return nil, ErrStoreNotConfigured
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, ErrSubjectRequired
	}
	return l.store.ListEntriesBySubject(ctx, subjectID)
}

// RunWeeklyAttendanceTally scores every active mentor on the percentage of
// their active mentees present at the eventDate worship service. Mentors with
// no active mentees are skipped, as are mentors already scored for that date.
// A failure for one mentor is logged and does not abort the sweep. Returns the
// number of mentors newly scored.
func (l *Ledger) RunWeeklyAttendanceTally(ctx context.Context, eventDate time.Time) (int, error) {
	if l == nil || l.store == nil {
		return 0, ErrStoreNotConfigured
	}
	if l.attendance == nil {
		return 0, ErrAttendanceSourceNotConfigured
	}
	if eventDate.IsZero() {
		return 0, ErrEventDateRequired
	}

	mentorIDs, err := l.attendance.ActiveMentorIDs(ctx)
	if err != nil {
		return 0, err
	}

	dateStr := eventDate.UTC().Format("2006-01-02")
	scored := 0
	for _, mentorID := range mentorIDs {
		menteeIDs, err := l.attendance.ActiveMenteeIDs(ctx, mentorID)
		if err != nil {
			log.Printf("attendance tally %s: list mentees: %v", mentorID, err)
			continue
		}
		if len(menteeIDs) == 0 {
			continue
		}

		present, err := l.attendance.CountPresentAtWorship(ctx, menteeIDs, eventDate)
		if err != nil {
			log.Printf("attendance tally %s: count present: %v", mentorID, err)
			continue
		}

		percent := int(math.Round(float64(present) / float64(len(menteeIDs)) * 100))
		points := PointsForAttendanceRate(percent)
		if points == 0 {
			continue
		}

		description := fmt.Sprintf("Worship attendance %s: %d/%d (%d%%)", dateStr, present, len(menteeIDs), percent)
		entry, err := l.append(ctx, mentorID, ActionWorshipAttendance, points, description, nil, attendanceDedupeKey(eventDate))
		if err != nil {
			log.Printf("attendance tally %s: record: %v", mentorID, err)
			continue
		}
		if entry != nil {
			scored++
		}
	}
	return scored, nil
}

func (l *Ledger) append(ctx context.Context, subjectID string, action Action, points int, description string, reference *Reference, dedupeKey string) (*Entry, error) {
	entryID, err := l.newID()
	if err != nil {
		return nil, err
	}
	entry := Entry{
		ID:          entryID,
		SubjectID:   subjectID,
		Action:      action,
		Points:      points,
		Description: strings.TrimSpace(description),
		Reference:   reference,
		DedupeKey:   dedupeKey,
		CreatedAt:   l.nowUTC(),
	}
	if err := l.store.AppendEntry(ctx, entry); err != nil {
		if dedupeKey != "" && errors.Is(err, ErrConflict) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (l *Ledger) nowUTC() time.Time {
	if l.clock == nil {
		return time.Now().UTC()
	}
	return l.clock().UTC()
}

func referenceDedupeKey(action Action, reference Reference) string {
	return fmt.Sprintf("%s:%s:%s", action, reference.Kind, reference.ID)
}

// attendanceDedupeKey guards the weekly batch against re-runs for one date.
func attendanceDedupeKey(eventDate time.Time) string {
	return fmt.Sprintf("%s:%s", ActionWorshipAttendance, eventDate.UTC().Format("2006-01-02"))
}
