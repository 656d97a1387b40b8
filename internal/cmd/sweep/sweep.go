// Package sweep parses sweep command flags and runs the weekly recognition
// batch: the attendance tally and the badge sweep.
package sweep

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	entrypoint "github.com/diarra2704/oikos/internal/platform/cmd"
	communityapp "github.com/diarra2704/oikos/internal/services/community/app"
	communitysqlite "github.com/diarra2704/oikos/internal/services/community/storage/sqlite"
	recognitionapp "github.com/diarra2704/oikos/internal/services/recognition/app"
	"github.com/diarra2704/oikos/internal/services/recognition/domain"
	recognitionsqlite "github.com/diarra2704/oikos/internal/services/recognition/storage/sqlite"
)

// Config holds sweep command configuration.
type Config struct {
	RecognitionDBPath string `env:"OIKOS_SWEEP_RECOGNITION_DB_PATH" envDefault:"data/recognition.db"`
	CommunityDBPath   string `env:"OIKOS_SWEEP_COMMUNITY_DB_PATH" envDefault:"data/community.db"`
	Date              string
	TallyOnly         bool
	BadgesOnly        bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.RecognitionDBPath, "recognition-db-path", cfg.RecognitionDBPath, "The recognition SQLite database path")
	fs.StringVar(&cfg.CommunityDBPath, "community-db-path", cfg.CommunityDBPath, "The community SQLite database path")
	fs.StringVar(&cfg.Date, "date", "", "Worship service date as YYYY-MM-DD (default: most recent Sunday)")
	fs.BoolVar(&cfg.TallyOnly, "tally-only", false, "Run only the attendance tally")
	fs.BoolVar(&cfg.BadgesOnly, "badges-only", false, "Run only the badge sweep")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the sweep. Both passes are idempotent, so re-running for the
// same date is safe.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSweep, func(ctx context.Context) error {
		if cfg.TallyOnly && cfg.BadgesOnly {
			return fmt.Errorf("tally-only and badges-only are mutually exclusive")
		}

		eventDate, err := resolveEventDate(cfg.Date, time.Now())
		if err != nil {
			return err
		}

		recognitionStore, err := recognitionsqlite.Open(cfg.RecognitionDBPath)
		if err != nil {
			return fmt.Errorf("open recognition store: %w", err)
		}
		defer recognitionStore.Close()

		communityStore, err := communitysqlite.Open(cfg.CommunityDBPath)
		if err != nil {
			return fmt.Errorf("open community store: %w", err)
		}
		defer communityStore.Close()

		sources := communityapp.NewSourceAdapter(communityStore)

		if !cfg.BadgesOnly {
			ledger := domain.NewLedger(recognitionapp.NewLedgerStoreAdapter(recognitionStore), sources, nil, nil)
			scored, err := ledger.RunWeeklyAttendanceTally(ctx, eventDate)
			if err != nil {
				return fmt.Errorf("attendance tally: %w", err)
			}
			log.Printf("attendance tally %s: %d mentors scored", eventDate.Format("2006-01-02"), scored)
		}

		if !cfg.TallyOnly {
			evaluator := domain.NewEvaluator(recognitionapp.NewBadgeStoreAdapter(recognitionStore), sources, sources, nil)
			awarded, err := evaluator.SweepBadges(ctx, eventDate)
			if err != nil {
				return fmt.Errorf("badge sweep: %w", err)
			}
			log.Printf("badge sweep: %d badges awarded", awarded)
		}
		return nil
	})
}

// resolveEventDate parses the -date flag, defaulting to the most recent
// Sunday at midnight UTC.
func resolveEventDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		day := now.UTC()
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, -int(day.Weekday())), nil
	}
	eventDate, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return eventDate, nil
}
