// Package storage defines the community read-model records and the store
// contract the recognition and assignment engines read through.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested community record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
)

// Mentor roles.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleCellLeader = "cell_leader"
	RoleMentor     = "mentor"
)

// Attendance event kinds.
const (
	EventWorship = "worship"
	EventCell    = "cell"
	EventOther   = "other"
)

// Report kinds and statuses.
const (
	ReportWeekly  = "weekly"
	ReportMonthly = "monthly"

	ReportStatusDraft     = "draft"
	ReportStatusSubmitted = "submitted"
	ReportStatusValidated = "validated"
)

// Testimony statuses.
const (
	TestimonyPending   = "pending"
	TestimonyValidated = "validated"
	TestimonyRejected  = "rejected"
)

// MentorRecord stores one mentor. Gender is empty when unknown; BirthDate is
// nil when unknown.
type MentorRecord struct {
	ID        string
	Name      string
	Role      string
	Gender    string
	BirthDate *time.Time
	ScopeID   string
	CellID    string
	Active    bool
}

// MenteeRecord stores one followed community member. MentorID and
// InvitedByID are empty when unassigned.
type MenteeRecord struct {
	ID             string
	Name           string
	MentorID       string
	InvitedByID    string
	ScopeID        string
	Active         bool
	LastAttendedAt *time.Time
	ImpactStatus   string
	ServiceStartAt *time.Time
}

// AttendanceRecord stores one mentee attendance log row.
type AttendanceRecord struct {
	ID         string
	MenteeID   string
	EventKind  string
	EventDate  time.Time
	Present    bool
	RecordedBy string
}

// InvitationRecord stores one invitation authored by a mentor.
type InvitationRecord struct {
	ID          string
	InviterID   string
	InviteeName string
	Attended    bool
	CreatedAt   time.Time
}

// TestimonyRecord stores one mentor testimony and its review status.
type TestimonyRecord struct {
	ID        string
	MentorID  string
	Status    string
	CreatedAt time.Time
}

// ReportRecord stores one follow-up report.
type ReportRecord struct {
	ID          string
	AuthorID    string
	Kind        string
	PeriodEnd   time.Time
	Status      string
	SubmittedAt *time.Time
}

// MentorPoolRecord is one eligible mentor decorated with its current active
// mentee load.
type MentorPoolRecord struct {
	Mentor     MentorRecord
	ActiveLoad int
}

// Store persists the community read-model and answers the aggregate queries
// the engines consume. Writes exist for seeding; the engines only read.
type Store interface {
	PutMentor(ctx context.Context, record MentorRecord) error
	PutMentee(ctx context.Context, record MenteeRecord) error
	PutAttendance(ctx context.Context, record AttendanceRecord) error
	PutInvitation(ctx context.Context, record InvitationRecord) error
	PutTestimony(ctx context.Context, record TestimonyRecord) error
	PutReport(ctx context.Context, record ReportRecord) error

	GetMentor(ctx context.Context, mentorID string) (MentorRecord, error)
	ActiveMentorIDs(ctx context.Context) ([]string, error)
	ActiveMenteeIDs(ctx context.Context, mentorID string) ([]string, error)
	CountPresentAtWorship(ctx context.Context, menteeIDs []string, eventDate time.Time) (int, error)
	CountInvitationsByInviter(ctx context.Context, mentorID string) (int, error)
	CountActiveMenteesWithAttendance(ctx context.Context, mentorID string) (int, error)
	AttendanceWindowStats(ctx context.Context, mentorID string, since time.Time) (logged int, present int, err error)
	HasValidatedTestimony(ctx context.Context, mentorID string) (bool, error)
	CountMenteesInvitedBy(ctx context.Context, mentorID string) (int, error)
	CountSubmittedReports(ctx context.Context, mentorID string) (int, error)
	EligibleMentors(ctx context.Context, scopeID string) ([]MentorPoolRecord, error)
}
