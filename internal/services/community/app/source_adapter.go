// Package app adapts the community store to the source interfaces the
// recognition and assignment engines consume.
package app

import (
	"context"
	"errors"
	"time"

	assignment "github.com/diarra2704/oikos/internal/services/assignment/domain"
	"github.com/diarra2704/oikos/internal/services/community/storage"
	recognition "github.com/diarra2704/oikos/internal/services/recognition/domain"
)

// ErrStoreNotConfigured indicates the adapter is missing its community store.
var ErrStoreNotConfigured = errors.New("community store is not configured")

// SourceAdapter exposes the community store as the recognition ledger's
// AttendanceSource, the badge evaluator's ActivitySource, and the assignment
// scorer's CandidateSource.
type SourceAdapter struct {
	store storage.Store
}

// NewSourceAdapter wraps a community store for engine use.
func NewSourceAdapter(store storage.Store) *SourceAdapter {
	return &SourceAdapter{store: store}
}

func (a *SourceAdapter) ActiveMentorIDs(ctx context.Context) ([]string, error) {
	if a == nil || a.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return a.store.ActiveMentorIDs(ctx)
}

func (a *SourceAdapter) ActiveMenteeIDs(ctx context.Context, mentorID string) ([]string, error) {
	if a == nil || a.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return a.store.ActiveMenteeIDs(ctx, mentorID)
}

func (a *SourceAdapter) CountPresentAtWorship(ctx context.Context, menteeIDs []string, eventDate time.Time) (int, error) {
	if a == nil || a.store == nil {
		return 0, ErrStoreNotConfigured
	}
	return a.store.CountPresentAtWorship(ctx, menteeIDs, eventDate)
}

func (a *SourceAdapter) CountInvitationsByInviter(ctx context.Context, subjectID string) (int, error) {
	if a == nil || a.store == nil {
		return 0, ErrStoreNotConfigured
	}
	return a.store.CountInvitationsByInviter(ctx, subjectID)
}

func (a *SourceAdapter) CountActiveMenteesWithAttendance(ctx context.Context, subjectID string) (int, error) {
	if a == nil || a.store == nil {
		return 0, ErrStoreNotConfigured
	}
	return a.store.CountActiveMenteesWithAttendance(ctx, subjectID)
}

func (a *SourceAdapter) AttendanceWindowStats(ctx context.Context, subjectID string, since time.Time) (int, int, error) {
	if a == nil || a.store == nil {
		return 0, 0, ErrStoreNotConfigured
	}
	return a.store.AttendanceWindowStats(ctx, subjectID, since)
}

func (a *SourceAdapter) HasValidatedTestimony(ctx context.Context, subjectID string) (bool, error) {
	if a == nil || a.store == nil {
		return false, ErrStoreNotConfigured
	}
	return a.store.HasValidatedTestimony(ctx, subjectID)
}

// MentorRole resolves one mentor's role. An unknown mentor resolves to an
// empty role so badge rules treat it as no leadership, not an error.
func (a *SourceAdapter) MentorRole(ctx context.Context, subjectID string) (string, error) {
	if a == nil || a.store == nil {
		return "", ErrStoreNotConfigured
	}
	mentor, err := a.store.GetMentor(ctx, subjectID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return mentor.Role, nil
}

func (a *SourceAdapter) CountMembersInvitedBy(ctx context.Context, subjectID string) (int, error) {
	if a == nil || a.store == nil {
		return 0, ErrStoreNotConfigured
	}
	return a.store.CountMenteesInvitedBy(ctx, subjectID)
}

func (a *SourceAdapter) CountSubmittedReports(ctx context.Context, subjectID string) (int, error) {
	if a == nil || a.store == nil {
		return 0, ErrStoreNotConfigured
	}
	return a.store.CountSubmittedReports(ctx, subjectID)
}

// EligibleMentors returns the scorer candidate pool for one scope.
func (a *SourceAdapter) EligibleMentors(ctx context.Context, scopeID string) ([]assignment.Candidate, error) {
	if a == nil || a.store == nil {
		return nil, ErrStoreNotConfigured
	}
	records, err := a.store.EligibleMentors(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	candidates := make([]assignment.Candidate, 0, len(records))
	for _, record := range records {
		candidate := assignment.Candidate{
			ID:         record.Mentor.ID,
			Name:       record.Mentor.Name,
			Gender:     record.Mentor.Gender,
			ActiveLoad: record.ActiveLoad,
		}
		if record.Mentor.BirthDate != nil {
			candidate.BirthDate = *record.Mentor.BirthDate
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

var (
	_ recognition.AttendanceSource = (*SourceAdapter)(nil)
	_ recognition.ActivitySource   = (*SourceAdapter)(nil)
	_ assignment.CandidateSource   = (*SourceAdapter)(nil)
)
