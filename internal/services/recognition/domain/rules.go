package domain

import (
	"context"
	"time"
)

// Badge slugs. Each slug identifies one rule in the registry.
const (
	BadgeSemeur       = "semeur"
	BadgeRestaurateur = "restaurateur"
	BadgeFidele       = "fidele"
	BadgeTransforme   = "transforme"
	BadgePionnier     = "pionnier"
	BadgeConnecteur   = "connecteur"
	BadgeAmbassadeur  = "ambassadeur"
	BadgeServiteur    = "serviteur"
)

// Mentor roles the pionnier rule recognizes.
const (
	RoleSupervisor = "supervisor"
	RoleCellLeader = "cell_leader"
	RoleMentor     = "mentor"
)

// Rule decides whether one subject satisfies a badge criterion. threshold is
// the badge's seeded threshold; now is the explicit reference instant for
// windowed rules.
type Rule func(ctx context.Context, src ActivitySource, subjectID string, threshold int, now time.Time) (bool, error)

// DefaultRules returns the badge rule registry. Adding a badge means seeding
// a catalog row and registering its rule here.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		BadgeSemeur:       invitationCountRule,
		BadgeAmbassadeur:  invitationCountRule,
		BadgeRestaurateur: reengagedMenteesRule,
		BadgeFidele:       fullAttendanceRule,
		BadgeTransforme:   validatedTestimonyRule,
		BadgePionnier:     leadershipRoleRule,
		BadgeConnecteur:   membersIntegratedRule,
		BadgeServiteur:    reportsSubmittedRule,
	}
}

func invitationCountRule(ctx context.Context, src ActivitySource, subjectID string, threshold int, _ time.Time) (bool, error) {
	count, err := src.CountInvitationsByInviter(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return count >= threshold, nil
}

// reengagedMenteesRule counts active mentees with any recorded attendance.
// This is a coarse proxy for re-engagement kept from the source system; it
// does not verify a prior period of inactivity.
func reengagedMenteesRule(ctx context.Context, src ActivitySource, subjectID string, threshold int, _ time.Time) (bool, error) {
	count, err := src.CountActiveMenteesWithAttendance(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return count >= threshold, nil
}

// fullAttendanceRule requires at least threshold attendance-log events across
// the subject's mentees over the trailing three months, with zero absences.
func fullAttendanceRule(ctx context.Context, src ActivitySource, subjectID string, threshold int, now time.Time) (bool, error) {
	since := now.AddDate(0, -3, 0)
	logged, present, err := src.AttendanceWindowStats(ctx, subjectID, since)
	if err != nil {
		return false, err
	}
	return logged >= threshold && present == logged, nil
}

func validatedTestimonyRule(ctx context.Context, src ActivitySource, subjectID string, _ int, _ time.Time) (bool, error) {
	return src.HasValidatedTestimony(ctx, subjectID)
}

func leadershipRoleRule(ctx context.Context, src ActivitySource, subjectID string, _ int, _ time.Time) (bool, error) {
	role, err := src.MentorRole(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return role == RoleSupervisor || role == RoleCellLeader, nil
}

func membersIntegratedRule(ctx context.Context, src ActivitySource, subjectID string, threshold int, _ time.Time) (bool, error) {
	count, err := src.CountMembersInvitedBy(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return count >= threshold, nil
}

func reportsSubmittedRule(ctx context.Context, src ActivitySource, subjectID string, threshold int, _ time.Time) (bool, error) {
	count, err := src.CountSubmittedReports(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return count >= threshold, nil
}
