package domain

import (
	"context"
	"fmt"
	"time"
)

// Report kinds and statuses as the surrounding application files them.
const (
	ReportKindWeekly  = "weekly"
	ReportKindMonthly = "monthly"

	ReportStatusDraft     = "draft"
	ReportStatusSubmitted = "submitted"
	ReportStatusValidated = "validated"
)

// Formation statuses relevant to point awards.
const (
	FormationStatusInProgress = "in_progress"
	FormationStatusValidated  = "validated"
)

// Impact-family participation statuses.
const (
	ImpactFamilyRegular = "regular"
	ImpactFamilyEngaged = "engaged"
)

// Reference kinds used by the award helpers.
const (
	ReferenceKindInvitation = "invitation"
	ReferenceKindReport     = "report"
	ReferenceKindFormation  = "formation"
	ReferenceKindMentee     = "mentee"
)

// InvitationEvent describes an invitation state change.
type InvitationEvent struct {
	InvitationID string
	InviterID    string
	InviteeName  string
	Attended     bool
}

// ReportEvent describes a weekly or monthly follow-up report filing.
type ReportEvent struct {
	ReportID    string
	AuthorID    string
	Kind        string
	PeriodEnd   time.Time
	Status      string
	SubmittedAt time.Time
}

// MonthlyReportEvent describes the dedicated monthly report filing.
type MonthlyReportEvent struct {
	ReportID    string
	MentorID    string
	Month       time.Time
	SubmittedAt time.Time
}

// FormationEvent describes a mentee formation state change. MentorID is the
// mentee's current mentor; the award is skipped when the mentee has none.
type FormationEvent struct {
	FormationID string
	MentorID    string
	Kind        string
	Status      string
}

// MenteeSnapshot carries the mentee fields the impact-family and service
// awards inspect.
type MenteeSnapshot struct {
	MenteeID           string
	MentorID           string
	ImpactFamilyStatus string
	ServingSince       *time.Time
}

// AwardInvitationAttended grants one point to the inviter once the invitee
// attended. No-op when the invitee has not attended or the inviter is unknown.
func (l *Ledger) AwardInvitationAttended(ctx context.Context, event InvitationEvent) (*Entry, error) {
	if !event.Attended || event.InviterID == "" {
		return nil, nil
	}
	return l.Record(ctx, RecordInput{
		SubjectID:   event.InviterID,
		Action:      ActionInvitationAttended,
		Points:      1,
		Description: fmt.Sprintf("Invitee %s attended worship", event.InviteeName),
		Reference:   &Reference{Kind: ReferenceKindInvitation, ID: event.InvitationID},
	})
}

// AwardReportOnTime grants one point for a submitted report filed within its
// deadline. Drafts, late filings, and authorless reports are no-ops.
func (l *Ledger) AwardReportOnTime(ctx context.Context, event ReportEvent) (*Entry, error) {
	if event.Status != ReportStatusSubmitted || event.AuthorID == "" {
		return nil, nil
	}
	if !reportFiledOnTime(event) {
		return nil, nil
	}
	kindLabel := "weekly"
	if event.Kind == ReportKindMonthly {
		kindLabel = "monthly"
	}
	return l.Record(ctx, RecordInput{
		SubjectID:   event.AuthorID,
		Action:      ActionReportOnTime,
		Points:      1,
		Description: fmt.Sprintf("Filed %s report on time", kindLabel),
		Reference:   &Reference{Kind: ReferenceKindReport, ID: event.ReportID},
	})
}

// AwardMonthlyReportOnTime grants one point for the dedicated monthly report
// filed within two days of month end.
func (l *Ledger) AwardMonthlyReportOnTime(ctx context.Context, event MonthlyReportEvent) (*Entry, error) {
	if event.MentorID == "" {
		return nil, nil
	}
	if event.SubmittedAt.After(monthlyReportDeadline(event.Month)) {
		return nil, nil
	}
	return l.Record(ctx, RecordInput{
		SubjectID:   event.MentorID,
		Action:      ActionMonthlyReportOnTime,
		Points:      1,
		Description: "Filed monthly report on time",
		Reference:   &Reference{Kind: ReferenceKindReport, ID: event.ReportID},
	})
}

// AwardFormationStarted grants one point to the mentor when a mentee enters a
// formation track.
func (l *Ledger) AwardFormationStarted(ctx context.Context, event FormationEvent) (*Entry, error) {
	if event.Status != FormationStatusInProgress || event.MentorID == "" {
		return nil, nil
	}
	return l.Record(ctx, RecordInput{
		SubjectID:   event.MentorID,
		Action:      ActionFormationStarted,
		Points:      1,
		Description: fmt.Sprintf("Mentee started the %s formation", event.Kind),
		Reference:   &Reference{Kind: ReferenceKindFormation, ID: event.FormationID},
	})
}

// AwardFormationCompleted grants two points to the mentor when a mentee
// validates a formation track.
func (l *Ledger) AwardFormationCompleted(ctx context.Context, event FormationEvent) (*Entry, error) {
	if event.Status != FormationStatusValidated || event.MentorID == "" {
		return nil, nil
	}
	return l.Record(ctx, RecordInput{
		SubjectID:   event.MentorID,
		Action:      ActionFormationCompleted,
		Points:      2,
		Description: fmt.Sprintf("Mentee validated the %s formation", event.Kind),
		Reference:   &Reference{Kind: ReferenceKindFormation, ID: event.FormationID},
	})
}

// AwardImpactFamily grants one point for a mentee regular in an impact family
// and two for an engaged one.
func (l *Ledger) AwardImpactFamily(ctx context.Context, mentee MenteeSnapshot) (*Entry, error) {
	if mentee.MentorID == "" {
		return nil, nil
	}

	var (
		action      Action
		points      int
		description string
	)
	switch mentee.ImpactFamilyStatus {
	case ImpactFamilyRegular:
		action, points = ActionImpactFamilyRegular, 1
		description = "Mentee regular in an impact family"
	case ImpactFamilyEngaged:
		action, points = ActionImpactFamilyEngaged, 2
		description = "Mentee engaged in an impact family"
	default:
		return nil, nil
	}
	return l.Record(ctx, RecordInput{
		SubjectID:   mentee.MentorID,
		Action:      action,
		Points:      points,
		Description: description,
		Reference:   &Reference{Kind: ReferenceKindMentee, ID: mentee.MenteeID},
	})
}

// AwardServiceStarted grants two points when a mentee starts serving in a
// department.
func (l *Ledger) AwardServiceStarted(ctx context.Context, mentee MenteeSnapshot) (*Entry, error) {
	if mentee.ServingSince == nil || mentee.MentorID == "" {
		return nil, nil
	}
	return l.Record(ctx, RecordInput{
		SubjectID:   mentee.MentorID,
		Action:      ActionServiceStarted,
		Points:      2,
		Description: "Mentee started serving in a department",
		Reference:   &Reference{Kind: ReferenceKindMentee, ID: mentee.MenteeID},
	})
}

// AwardLegacy appends an entry from the fixed legacy point map. Legacy call
// sites predate the dedupe keys, so every call appends a new entry.
func (l *Ledger) AwardLegacy(ctx context.Context, subjectID string, action Action, description string) (*Entry, error) {
	if l == nil || l.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if subjectID == "" {
		return nil, ErrSubjectRequired
	}
	if !KnownAction(action) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return l.append(ctx, subjectID, action, legacyPoints[action], description, nil, "")
}

// Weekly reports are due by 20:00 on the final day of their period; monthly
// reports two days after month end.
func reportFiledOnTime(event ReportEvent) bool {
	switch event.Kind {
	case ReportKindWeekly:
		deadline := time.Date(
			event.PeriodEnd.Year(), event.PeriodEnd.Month(), event.PeriodEnd.Day(),
			20, 0, 0, 0, event.PeriodEnd.Location(),
		)
		return !event.SubmittedAt.After(deadline)
	case ReportKindMonthly:
		return !event.SubmittedAt.After(monthlyReportDeadline(event.PeriodEnd))
	default:
		return false
	}
}

// monthlyReportDeadline is two days past the last day of the month, end of
// day, which is always the second of the following month.
func monthlyReportDeadline(month time.Time) time.Time {
	return time.Date(month.Year(), month.Month()+1, 2, 23, 59, 59, 999999999, month.Location())
}
