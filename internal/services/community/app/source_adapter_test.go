package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/diarra2704/oikos/internal/services/community/storage"
	communitysqlite "github.com/diarra2704/oikos/internal/services/community/storage/sqlite"
)

func TestSourceAdapter_RequiresStore(t *testing.T) {
	t.Parallel()

	var adapter *SourceAdapter
	if _, err := adapter.ActiveMentorIDs(context.Background()); !errors.Is(err, ErrStoreNotConfigured) {
		t.Fatalf("err = %v, want ErrStoreNotConfigured", err)
	}
}

func TestSourceAdapter_MentorRoleForUnknownMentorIsEmpty(t *testing.T) {
	t.Parallel()

	adapter := NewSourceAdapter(openTempStore(t))
	role, err := adapter.MentorRole(context.Background(), "mentor-ghost")
	if err != nil {
		t.Fatalf("mentor role: %v", err)
	}
	if role != "" {
		t.Fatalf("role = %q, want empty for unknown mentor", role)
	}
}

func TestSourceAdapter_EligibleMentorsMapsCandidates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	birthDate := time.Date(1992, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := store.PutMentor(ctx, storage.MentorRecord{
		ID:        "mentor-1",
		Name:      "Adama",
		Role:      storage.RoleMentor,
		Gender:    "male",
		BirthDate: &birthDate,
		ScopeID:   "famille-1",
		Active:    true,
	}); err != nil {
		t.Fatalf("put mentor: %v", err)
	}
	if err := store.PutMentor(ctx, storage.MentorRecord{
		ID:      "mentor-2",
		Name:    "Mariam",
		Role:    storage.RoleMentor,
		ScopeID: "famille-1",
		Active:  true,
	}); err != nil {
		t.Fatalf("put unknown-age mentor: %v", err)
	}
	if err := store.PutMentee(ctx, storage.MenteeRecord{
		ID:       "ame-1",
		Name:     "Oumar",
		MentorID: "mentor-1",
		Active:   true,
	}); err != nil {
		t.Fatalf("put mentee: %v", err)
	}

	adapter := NewSourceAdapter(store)
	candidates, err := adapter.EligibleMentors(ctx, "famille-1")
	if err != nil {
		t.Fatalf("eligible mentors: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	if candidates[0].ID != "mentor-1" || candidates[0].ActiveLoad != 1 {
		t.Fatalf("first candidate = %+v, want mentor-1 with load 1", candidates[0])
	}
	if !candidates[0].BirthDate.Equal(birthDate) {
		t.Fatalf("birth date = %v, want %v", candidates[0].BirthDate, birthDate)
	}
	if !candidates[1].BirthDate.IsZero() {
		t.Fatalf("unknown birth date = %v, want zero", candidates[1].BirthDate)
	}
}

func openTempStore(t *testing.T) *communitysqlite.Store {
	t.Helper()
	store, err := communitysqlite.Open(filepath.Join(t.TempDir(), "community.db"))
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
