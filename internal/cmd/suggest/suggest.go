// Package suggest parses suggest command flags and prints the ranked mentor
// shortlist for a mentee profile.
package suggest

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	entrypoint "github.com/diarra2704/oikos/internal/platform/cmd"
	"github.com/diarra2704/oikos/internal/services/assignment/domain"
	communityapp "github.com/diarra2704/oikos/internal/services/community/app"
	communitysqlite "github.com/diarra2704/oikos/internal/services/community/storage/sqlite"
)

// Config holds suggest command configuration.
type Config struct {
	CommunityDBPath string `env:"OIKOS_SUGGEST_COMMUNITY_DB_PATH" envDefault:"data/community.db"`
	Scope           string
	Gender          string
	BirthDate       string
	Limit           int
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.CommunityDBPath, "community-db-path", cfg.CommunityDBPath, "The community SQLite database path")
	fs.StringVar(&cfg.Scope, "scope", "", "Restrict the pool to one discipleship family")
	fs.StringVar(&cfg.Gender, "gender", "", "Mentee gender (male or female, empty for unknown)")
	fs.StringVar(&cfg.BirthDate, "birth-date", "", "Mentee birth date as YYYY-MM-DD (empty for unknown)")
	fs.IntVar(&cfg.Limit, "limit", 0, "Shortlist size (0 for the default)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the suggest command, writing the shortlist to stdout.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSuggest, func(ctx context.Context) error {
		return run(ctx, cfg, os.Stdout)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	var birthDate time.Time
	if cfg.BirthDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", cfg.BirthDate, time.UTC)
		if err != nil {
			return fmt.Errorf("parse birth date %q: %w", cfg.BirthDate, err)
		}
		birthDate = parsed
	}

	store, err := communitysqlite.Open(cfg.CommunityDBPath)
	if err != nil {
		return fmt.Errorf("open community store: %w", err)
	}
	defer store.Close()

	scorer := domain.NewScorer(communityapp.NewSourceAdapter(store))
	suggestions, err := scorer.Suggest(ctx, domain.Query{
		ScopeID:         cfg.Scope,
		TargetGender:    cfg.Gender,
		TargetBirthDate: birthDate,
		ReferenceDate:   time.Now(),
		Limit:           cfg.Limit,
	})
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Fprintln(out, "no eligible mentors")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tMENTOR\tSCORE\tGENDER\tAGE\tLOAD\tNOTES")
	for i, suggestion := range suggestions {
		labels := make([]string, 0, len(suggestion.Tags))
		for _, tag := range suggestion.Tags {
			labels = append(labels, tag.Label)
		}
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%d\t%d\t%d\t%s\n",
			i+1,
			suggestion.Candidate.Name,
			suggestion.Score,
			suggestion.GenderScore,
			suggestion.AgeScore,
			suggestion.WorkloadScore,
			strings.Join(labels, ", "),
		)
	}
	return w.Flush()
}
