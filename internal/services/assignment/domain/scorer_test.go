package domain

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCandidateSource struct {
	pool    []Candidate
	scope   string
	poolErr error
}

func (s *fakeCandidateSource) EligibleMentors(_ context.Context, scopeID string) ([]Candidate, error) {
	s.scope = scopeID
	if s.poolErr != nil {
		return nil, s.poolErr
	}
	return s.pool, nil
}

var referenceDate = time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

func born(age int) time.Time {
	return referenceDate.AddDate(-age, -1, 0)
}

func TestSuggest_RanksGenderAgeAndLoad(t *testing.T) {
	t.Parallel()

	source := &fakeCandidateSource{pool: []Candidate{
		{ID: "c-match", Name: "Match", Gender: GenderMale, BirthDate: born(28), ActiveLoad: 0},
		{ID: "c-mismatch", Name: "Mismatch", Gender: GenderFemale, BirthDate: born(28), ActiveLoad: 5},
		{ID: "c-unknown", Name: "Unknown", BirthDate: born(28), ActiveLoad: 10},
	}}
	scorer := NewScorer(source)

	suggestions, err := scorer.Suggest(context.Background(), Query{
		TargetGender:    GenderMale,
		TargetBirthDate: born(28),
		ReferenceDate:   referenceDate,
	})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("suggestions = %d, want 3", len(suggestions))
	}

	if suggestions[0].Candidate.ID != "c-match" {
		t.Fatalf("top candidate = %q, want c-match", suggestions[0].Candidate.ID)
	}

	byID := make(map[string]Suggestion, len(suggestions))
	for _, suggestion := range suggestions {
		byID[suggestion.Candidate.ID] = suggestion
	}
	if byID["c-match"].GenderScore != 100 {
		t.Fatalf("matching gender sub-score = %d, want 100", byID["c-match"].GenderScore)
	}
	if byID["c-mismatch"].GenderScore != 0 {
		t.Fatalf("mismatching gender sub-score = %d, want 0", byID["c-mismatch"].GenderScore)
	}
	if byID["c-unknown"].GenderScore != 30 {
		t.Fatalf("unknown gender sub-score = %d, want 30", byID["c-unknown"].GenderScore)
	}

	// The top candidate also has the minimum load: a perfect composite.
	if byID["c-match"].Score != 10.0 {
		t.Fatalf("top composite = %.1f, want 10.0", byID["c-match"].Score)
	}
}

func TestSuggest_ScoresStayInBoundsAndSorted(t *testing.T) {
	t.Parallel()

	source := &fakeCandidateSource{pool: []Candidate{
		{ID: "a", Gender: GenderFemale, BirthDate: born(19), ActiveLoad: 7},
		{ID: "b", Gender: GenderMale, BirthDate: born(63), ActiveLoad: 2},
		{ID: "c", ActiveLoad: 4},
		{ID: "d", Gender: GenderFemale, ActiveLoad: 0},
	}}
	scorer := NewScorer(source)

	suggestions, err := scorer.Suggest(context.Background(), Query{
		TargetGender:    GenderFemale,
		TargetBirthDate: born(33),
		ReferenceDate:   referenceDate,
	})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}

	for i, suggestion := range suggestions {
		if suggestion.Score < 0 || suggestion.Score > 10 {
			t.Fatalf("score %.1f out of bounds", suggestion.Score)
		}
		if i > 0 && suggestions[i-1].Score < suggestion.Score {
			t.Fatalf("results not sorted descending at index %d", i)
		}
	}
}

func TestSuggest_WorkloadFairness(t *testing.T) {
	t.Parallel()

	balanced := &fakeCandidateSource{pool: []Candidate{
		{ID: "a", ActiveLoad: 4},
		{ID: "b", ActiveLoad: 4},
		{ID: "c", ActiveLoad: 4},
	}}
	suggestions, err := NewScorer(balanced).Suggest(context.Background(), Query{ReferenceDate: referenceDate})
	if err != nil {
		t.Fatalf("balanced suggest: %v", err)
	}
	for _, suggestion := range suggestions {
		if suggestion.WorkloadScore != 100 {
			t.Fatalf("balanced workload sub-score = %d, want 100", suggestion.WorkloadScore)
		}
	}

	spread := &fakeCandidateSource{pool: []Candidate{
		{ID: "light", ActiveLoad: 1},
		{ID: "mid", ActiveLoad: 5},
		{ID: "heavy", ActiveLoad: 9},
	}}
	suggestions, err = NewScorer(spread).Suggest(context.Background(), Query{ReferenceDate: referenceDate})
	if err != nil {
		t.Fatalf("spread suggest: %v", err)
	}
	byID := make(map[string]Suggestion, len(suggestions))
	for _, suggestion := range suggestions {
		byID[suggestion.Candidate.ID] = suggestion
	}
	if byID["light"].WorkloadScore != 100 {
		t.Fatalf("min load sub-score = %d, want 100", byID["light"].WorkloadScore)
	}
	if byID["heavy"].WorkloadScore != 0 {
		t.Fatalf("max load sub-score = %d, want 0", byID["heavy"].WorkloadScore)
	}
}

func TestSuggest_TieBreaksByCandidateID(t *testing.T) {
	t.Parallel()

	source := &fakeCandidateSource{pool: []Candidate{
		{ID: "zulu", ActiveLoad: 2},
		{ID: "alpha", ActiveLoad: 2},
		{ID: "mike", ActiveLoad: 2},
	}}
	suggestions, err := NewScorer(source).Suggest(context.Background(), Query{ReferenceDate: referenceDate})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	want := []string{"alpha", "mike", "zulu"}
	for i, id := range want {
		if suggestions[i].Candidate.ID != id {
			t.Fatalf("rank %d = %q, want %q", i, suggestions[i].Candidate.ID, id)
		}
	}
}

func TestSuggest_TruncatesToLimit(t *testing.T) {
	t.Parallel()

	pool := make([]Candidate, 0, 8)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		pool = append(pool, Candidate{ID: id})
	}
	source := &fakeCandidateSource{pool: pool}

	suggestions, err := NewScorer(source).Suggest(context.Background(), Query{ReferenceDate: referenceDate})
	if err != nil {
		t.Fatalf("default limit suggest: %v", err)
	}
	if len(suggestions) != defaultLimit {
		t.Fatalf("default shortlist = %d, want %d", len(suggestions), defaultLimit)
	}

	suggestions, err = NewScorer(source).Suggest(context.Background(), Query{ReferenceDate: referenceDate, Limit: 2})
	if err != nil {
		t.Fatalf("explicit limit suggest: %v", err)
	}
	if len(suggestions) != 2 {
		t.Fatalf("shortlist = %d, want 2", len(suggestions))
	}
}

func TestSuggest_EmptyPoolIsNotAnError(t *testing.T) {
	t.Parallel()

	source := &fakeCandidateSource{}
	suggestions, err := NewScorer(source).Suggest(context.Background(), Query{
		ScopeID:       "famille-nord",
		ReferenceDate: referenceDate,
	})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if suggestions == nil || len(suggestions) != 0 {
		t.Fatalf("suggestions = %v, want empty slice", suggestions)
	}
	if source.scope != "famille-nord" {
		t.Fatalf("scope passed = %q, want famille-nord", source.scope)
	}
}

func TestSuggest_RequiresReferenceDate(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(&fakeCandidateSource{})
	if _, err := scorer.Suggest(context.Background(), Query{}); !errors.Is(err, ErrReferenceDateRequired) {
		t.Fatalf("err = %v, want ErrReferenceDateRequired", err)
	}
}

func TestSuggest_TagsExplainTheComparison(t *testing.T) {
	t.Parallel()

	source := &fakeCandidateSource{pool: []Candidate{
		{ID: "near", Gender: GenderMale, BirthDate: born(21), ActiveLoad: 0},
		{ID: "heavy", Gender: GenderMale, BirthDate: born(28), ActiveLoad: 6},
	}}
	suggestions, err := NewScorer(source).Suggest(context.Background(), Query{
		TargetGender:    GenderMale,
		TargetBirthDate: born(27),
		ReferenceDate:   referenceDate,
	})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}

	labels := func(id string) map[string]string {
		t.Helper()
		for _, suggestion := range suggestions {
			if suggestion.Candidate.ID == id {
				tones := make(map[string]string, len(suggestion.Tags))
				for _, tag := range suggestion.Tags {
					tones[tag.Label] = tag.Tone
				}
				return tones
			}
		}
		t.Fatalf("candidate %q missing from suggestions", id)
		return nil
	}

	nearTags := labels("near")
	if tone, ok := nearTags["near bracket (18-24)"]; !ok || tone != ToneWarn {
		t.Fatalf("near tags = %v, want warn near-bracket tag", nearTags)
	}
	if tone, ok := nearTags["least loaded"]; !ok || tone != ToneGood {
		t.Fatalf("near tags = %v, want good least-loaded tag", nearTags)
	}

	heavyTags := labels("heavy")
	if tone, ok := heavyTags["same bracket (25-30)"]; !ok || tone != ToneGood {
		t.Fatalf("heavy tags = %v, want good same-bracket tag", heavyTags)
	}
	if tone, ok := heavyTags["6 active mentees"]; !ok || tone != ToneBad {
		t.Fatalf("heavy tags = %v, want bad load tag", heavyTags)
	}
}
