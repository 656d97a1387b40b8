package domain

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

var (
	// ErrBadgeStoreNotConfigured indicates the evaluator is missing persistence wiring.
	ErrBadgeStoreNotConfigured = errors.New("badge store is not configured")
	// ErrActivitySourceNotConfigured indicates the evaluator is missing its
	// community read-model wiring.
	ErrActivitySourceNotConfigured = errors.New("activity source is not configured")
	// ErrSubjectSourceNotConfigured indicates the badge sweep is missing its
	// subject listing wiring.
	ErrSubjectSourceNotConfigured = errors.New("subject source is not configured")
)

// Badge is one achievement marker from the seeded catalog.
type Badge struct {
	ID          string
	Slug        string
	Name        string
	Description string
	Icon        string
	Color       string
	Criteria    string
	Threshold   int
}

// BadgeAward is one permanent (subject, badge) award.
type BadgeAward struct {
	SubjectID string
	BadgeID   string
	AwardedAt time.Time
}

// BadgeStatus decorates a badge with whether one subject holds it.
type BadgeStatus struct {
	Badge    Badge
	Obtained bool
}

// BadgeStore is the domain persistence boundary for badge awarding.
type BadgeStore interface {
	ListBadges(ctx context.Context) ([]Badge, error)
	ListAwardsBySubject(ctx context.Context, subjectID string) ([]BadgeAward, error)
	InsertAward(ctx context.Context, award BadgeAward) error
}

// ActivitySource supplies the per-subject activity counts the badge rules
// inspect. Rules are activity-count based and never read ledger point totals.
type ActivitySource interface {
	CountInvitationsByInviter(ctx context.Context, subjectID string) (int, error)
	CountActiveMenteesWithAttendance(ctx context.Context, subjectID string) (int, error)
	AttendanceWindowStats(ctx context.Context, subjectID string, since time.Time) (logged int, present int, err error)
	HasValidatedTestimony(ctx context.Context, subjectID string) (bool, error)
	MentorRole(ctx context.Context, subjectID string) (string, error)
	CountMembersInvitedBy(ctx context.Context, subjectID string) (int, error)
	CountSubmittedReports(ctx context.Context, subjectID string) (int, error)
}

// Evaluator awards badges by running the rule registry over a subject's
// activity. Awards are at-most-once and permanent.
type Evaluator struct {
	store    BadgeStore
	activity ActivitySource
	subjects SubjectSource
	rules    map[string]Rule
	clock    func() time.Time
}

// NewEvaluator constructs the badge evaluator with the default rule registry.
// The subject source may be nil when SweepBadges is not used.
func NewEvaluator(store BadgeStore, activity ActivitySource, subjects SubjectSource, clock func() time.Time) *Evaluator {
	if clock == nil {
		clock = time.Now
	}
	return &Evaluator{
		store:    store,
		activity: activity,
		subjects: subjects,
		rules:    DefaultRules(),
		clock:    clock,
	}
}

// EvaluateAndAward runs every badge rule the subject does not already satisfy
// and returns the newly awarded badges. now is the reference instant for
// windowed rules; the service clock is used when zero. A badge whose slug has
// no registered rule is skipped. A concurrent award of the same pair is
// treated as already awarded, not an error.
func (e *Evaluator) EvaluateAndAward(ctx context.Context, subjectID string, now time.Time) ([]Badge, error) {
	if e == nil || e.store == nil {
		return nil, ErrBadgeStoreNotConfigured
	}
	if e.activity == nil {
		return nil, ErrActivitySourceNotConfigured
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, ErrSubjectRequired
	}
	if now.IsZero() {
		now = e.clock()
	}
	now = now.UTC()

	badges, err := e.store.ListBadges(ctx)
	if err != nil {
		return nil, err
	}
	held, err := e.heldBadgeIDs(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	var newly []Badge
	for _, badge := range badges {
		if _, ok := held[badge.ID]; ok {
			continue
		}
		rule, ok := e.rules[badge.Slug]
		if !ok {
			continue
		}
		satisfied, err := rule(ctx, e.activity, subjectID, badge.Threshold, now)
		if err != nil {
			return newly, err
		}
		if !satisfied {
			continue
		}
		err = e.store.InsertAward(ctx, BadgeAward{
			SubjectID: subjectID,
			BadgeID:   badge.ID,
			AwardedAt: now,
		})
		if err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return newly, err
		}
		newly = append(newly, badge)
	}
	return newly, nil
}

// BadgesWithStatus returns every catalog badge decorated with whether the
// subject holds it. Read-only, no side effects.
func (e *Evaluator) BadgesWithStatus(ctx context.Context, subjectID string) ([]BadgeStatus, error) {
	if e == nil || e.store == nil {
		return nil, ErrBadgeStoreNotConfigured
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, ErrSubjectRequired
	}

	badges, err := e.store.ListBadges(ctx)
	if err != nil {
		return nil, err
	}
	held, err := e.heldBadgeIDs(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	statuses := make([]BadgeStatus, 0, len(badges))
	for _, badge := range badges {
		_, obtained := held[badge.ID]
		statuses = append(statuses, BadgeStatus{Badge: badge, Obtained: obtained})
	}
	return statuses, nil
}

// SweepBadges evaluates every active mentor. A failure for one subject is
// logged and does not abort the sweep. Returns the total badges awarded.
func (e *Evaluator) SweepBadges(ctx context.Context, now time.Time) (int, error) {
	if e == nil || e.store == nil {
		return 0, ErrBadgeStoreNotConfigured
	}
	if e.subjects == nil {
		return 0, ErrSubjectSourceNotConfigured
	}
	if now.IsZero() {
		now = e.clock()
	}

	mentorIDs, err := e.subjects.ActiveMentorIDs(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, mentorID := range mentorIDs {
		newly, err := e.EvaluateAndAward(ctx, mentorID, now)
		if err != nil {
			log.Printf("badge sweep %s: %v", mentorID, err)
			continue
		}
		for _, badge := range newly {
			log.Printf("badge awarded: %s -> %s", badge.Name, mentorID)
		}
		total += len(newly)
	}
	return total, nil
}

func (e *Evaluator) heldBadgeIDs(ctx context.Context, subjectID string) (map[string]struct{}, error) {
	awards, err := e.store.ListAwardsBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	held := make(map[string]struct{}, len(awards))
	for _, award := range awards {
		held[award.BadgeID] = struct{}{}
	}
	return held, nil
}
