package domain

// Action identifies one kind of point-earning event in the ledger.
type Action string

const (
	// ActionWorshipAttendance is the weekly mentee-attendance tally score.
	ActionWorshipAttendance Action = "presence_culte"
	// ActionInvitationAttended rewards an invitation whose invitee attended.
	ActionInvitationAttended Action = "invitation_venue"
	// ActionReportOnTime rewards a weekly or monthly report filed in time.
	ActionReportOnTime Action = "rapport_soumis"
	// ActionMonthlyReportOnTime rewards the dedicated monthly report filed in time.
	ActionMonthlyReportOnTime Action = "rapport_mensuel_soumis"
	// ActionFormationStarted rewards a mentee entering a formation track.
	ActionFormationStarted Action = "formation_debut"
	// ActionFormationCompleted rewards a mentee validating a formation track.
	ActionFormationCompleted Action = "formation_validee"
	// ActionImpactFamilyRegular rewards a mentee regular in an impact family.
	ActionImpactFamilyRegular Action = "famille_impact_regulier"
	// ActionImpactFamilyEngaged rewards a mentee engaged in an impact family.
	ActionImpactFamilyEngaged Action = "famille_impact_engage"
	// ActionServiceStarted rewards a mentee starting department service.
	ActionServiceStarted Action = "service_debut"
	// ActionTestimony rewards a validated testimony (legacy point map).
	ActionTestimony Action = "temoignage"
	// ActionLegacyPresence is a legacy zero-point presence marker.
	ActionLegacyPresence Action = "presence"
	// ActionLegacyInvitation is the legacy single-point invitation action.
	ActionLegacyInvitation Action = "invitation"
	// ActionLegacyMemberBrought is the legacy reward for bringing a member.
	ActionLegacyMemberBrought Action = "membre_amene"
)

var knownActions = map[Action]struct{}{
	ActionWorshipAttendance:   {},
	ActionInvitationAttended:  {},
	ActionReportOnTime:        {},
	ActionMonthlyReportOnTime: {},
	ActionFormationStarted:    {},
	ActionFormationCompleted:  {},
	ActionImpactFamilyRegular: {},
	ActionImpactFamilyEngaged: {},
	ActionServiceStarted:      {},
	ActionTestimony:           {},
	ActionLegacyPresence:      {},
	ActionLegacyInvitation:    {},
	ActionLegacyMemberBrought: {},
}

// KnownAction reports whether action is part of the ledger vocabulary.
func KnownAction(action Action) bool {
	_, ok := knownActions[action]
	return ok
}

// Fixed point values kept for call sites predating the event-specific award
// helpers. Unknown actions score zero.
var legacyPoints = map[Action]int{
	ActionLegacyPresence:      0,
	ActionLegacyInvitation:    1,
	ActionTestimony:           5,
	ActionLegacyMemberBrought: 10,
	ActionReportOnTime:        1,
}
