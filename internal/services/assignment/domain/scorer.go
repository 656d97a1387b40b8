// Package domain implements the mentor assignment scorer: a weighted blend of
// gender affinity, age-bracket proximity, and workload balance over the
// eligible mentor pool.
package domain

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"time"
)

var (
	// ErrCandidateSourceNotConfigured indicates the scorer is missing its
	// community read-model wiring.
	ErrCandidateSourceNotConfigured = errors.New("candidate source is not configured")
	// ErrReferenceDateRequired indicates the query is missing its reference
	// instant.
	ErrReferenceDateRequired = errors.New("reference date is required")
)

// Criterion weights. They sum to 100.
const (
	weightGender   = 40
	weightAge      = 35
	weightWorkload = 25
)

// defaultLimit caps the shortlist when the query does not.
const defaultLimit = 5

// Genders the scorer distinguishes. Anything else is treated as unknown.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Tag tones hint how a tag should be presented.
const (
	ToneGood = "good"
	ToneWarn = "warn"
	ToneBad  = "bad"
)

// Query describes the mentee the shortlist is built for. ScopeID and
// TargetGender are optional; a zero TargetBirthDate means age unknown.
// ReferenceDate is the instant ages are computed against.
type Query struct {
	ScopeID         string
	TargetGender    string
	TargetBirthDate time.Time
	ReferenceDate   time.Time
	Limit           int
}

// Candidate is one eligible mentor decorated with its current active mentee
// load. A zero BirthDate means age unknown.
type Candidate struct {
	ID         string
	Name       string
	Gender     string
	BirthDate  time.Time
	ActiveLoad int
}

// Tag is one human-readable scoring explanation. Tags are presentational and
// never affect ranking.
type Tag struct {
	Label string
	Tone  string
}

// Suggestion is one ranked shortlist row. Sub-scores are scaled to [0, 100];
// the composite score is a single decimal in [0.0, 10.0].
type Suggestion struct {
	Candidate     Candidate
	GenderScore   int
	AgeScore      int
	WorkloadScore int
	Score         float64
	Tags          []Tag
}

// CandidateSource supplies the eligible mentor pool, optionally restricted to
// one scope.
type CandidateSource interface {
	EligibleMentors(ctx context.Context, scopeID string) ([]Candidate, error)
}

// Scorer ranks eligible mentors for a mentee.
type Scorer struct {
	source CandidateSource
}

// NewScorer constructs the assignment scorer.
func NewScorer(source CandidateSource) *Scorer {
	return &Scorer{source: source}
}

// Suggest returns the ranked mentor shortlist for the query. An empty pool
// returns an empty slice, not an error. Ordering is descending composite
// score with ascending candidate ID as the tie-break, so the shortlist is
// stable regardless of pool query order.
func (s *Scorer) Suggest(ctx context.Context, query Query) ([]Suggestion, error) {
	if s == nil || s.source == nil {
		return nil, ErrCandidateSourceNotConfigured
	}
	if query.ReferenceDate.IsZero() {
		return nil, ErrReferenceDateRequired
	}

	pool, err := s.source.EligibleMentors(ctx, query.ScopeID)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return []Suggestion{}, nil
	}

	minLoad, maxLoad := loadBounds(pool)
	targetBracket := -1
	targetLabel := ""
	if age := ageAt(query.TargetBirthDate, query.ReferenceDate); age >= 0 {
		targetBracket, targetLabel = bracketFor(age)
	}

	suggestions := make([]Suggestion, 0, len(pool))
	for _, candidate := range pool {
		genderScore := genderAffinity(candidate.Gender, query.TargetGender)
		candidateBracket := -1
		candidateLabel := ""
		if age := ageAt(candidate.BirthDate, query.ReferenceDate); age >= 0 {
			candidateBracket, candidateLabel = bracketFor(age)
		}
		ageScore := bracketProximity(candidateBracket, targetBracket)
		workloadScore := workloadBalance(candidate.ActiveLoad, minLoad, maxLoad)

		weighted := genderScore*weightGender + ageScore*weightAge + workloadScore*weightWorkload
		suggestions = append(suggestions, Suggestion{
			Candidate:     candidate,
			GenderScore:   int(math.Round(genderScore * 100)),
			AgeScore:      int(math.Round(ageScore * 100)),
			WorkloadScore: int(math.Round(workloadScore * 100)),
			Score:         math.Round(weighted) / 10,
			Tags: buildTags(candidate, query, tagInputs{
				genderScore:      genderScore,
				candidateBracket: candidateBracket,
				candidateLabel:   candidateLabel,
				targetBracket:    targetBracket,
				targetLabel:      targetLabel,
				minLoad:          minLoad,
			}),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].Candidate.ID < suggestions[j].Candidate.ID
	})

	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// genderAffinity scores 1.0 for a known match, 0.0 for a known mismatch, and
// 0.3 when either gender is unknown.
func genderAffinity(candidate, target string) float64 {
	if !knownGender(candidate) || !knownGender(target) {
		return 0.3
	}
	if candidate == target {
		return 1.0
	}
	return 0.0
}

func knownGender(gender string) bool {
	return gender == GenderMale || gender == GenderFemale
}

// bracketProximity scores by bracket index distance: 0 apart 1.0, 1 apart
// 0.7, 2 apart 0.4, further 0.1. Either age unknown scores 0.5.
func bracketProximity(candidate, target int) float64 {
	if candidate < 0 || target < 0 {
		return 0.5
	}
	distance := candidate - target
	if distance < 0 {
		distance = -distance
	}
	switch distance {
	case 0:
		return 1.0
	case 1:
		return 0.7
	case 2:
		return 0.4
	default:
		return 0.1
	}
}

// workloadBalance scores linearly from 1.0 at the pool's minimum load to 0.0
// at its maximum. A fully balanced pool scores 1.0 for everyone.
func workloadBalance(load, minLoad, maxLoad int) float64 {
	if minLoad == maxLoad {
		return 1.0
	}
	return 1.0 - float64(load-minLoad)/float64(maxLoad-minLoad)
}

func loadBounds(pool []Candidate) (int, int) {
	minLoad := pool[0].ActiveLoad
	maxLoad := pool[0].ActiveLoad
	for _, candidate := range pool[1:] {
		if candidate.ActiveLoad < minLoad {
			minLoad = candidate.ActiveLoad
		}
		if candidate.ActiveLoad > maxLoad {
			maxLoad = candidate.ActiveLoad
		}
	}
	return minLoad, maxLoad
}

type tagInputs struct {
	genderScore      float64
	candidateBracket int
	candidateLabel   string
	targetBracket    int
	targetLabel      string
	minLoad          int
}

func buildTags(candidate Candidate, query Query, in tagInputs) []Tag {
	tags := make([]Tag, 0, 3)

	switch {
	case in.genderScore == 1.0:
		tags = append(tags, Tag{Label: "same gender", Tone: ToneGood})
	case in.genderScore == 0.0:
		tags = append(tags, Tag{Label: "different gender", Tone: ToneBad})
	default:
		tags = append(tags, Tag{Label: "gender unknown", Tone: ToneWarn})
	}

	switch {
	case in.candidateBracket < 0 || in.targetBracket < 0:
		tags = append(tags, Tag{Label: "age unknown", Tone: ToneWarn})
	case in.candidateBracket == in.targetBracket:
		tags = append(tags, Tag{Label: "same bracket (" + in.candidateLabel + ")", Tone: ToneGood})
	case abs(in.candidateBracket-in.targetBracket) == 1:
		tags = append(tags, Tag{Label: "near bracket (" + in.candidateLabel + ")", Tone: ToneWarn})
	default:
		tags = append(tags, Tag{Label: "distant bracket (" + in.candidateLabel + ")", Tone: ToneBad})
	}

	switch {
	case candidate.ActiveLoad == in.minLoad:
		tags = append(tags, Tag{Label: "least loaded", Tone: ToneGood})
	case candidate.ActiveLoad <= in.minLoad+3:
		tags = append(tags, Tag{Label: loadLabel(candidate.ActiveLoad), Tone: ToneWarn})
	default:
		tags = append(tags, Tag{Label: loadLabel(candidate.ActiveLoad), Tone: ToneBad})
	}

	return tags
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func loadLabel(load int) string {
	if load == 1 {
		return "1 active mentee"
	}
	return strconv.Itoa(load) + " active mentees"
}
