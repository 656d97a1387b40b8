// Package seed parses seed command flags and loads the badge catalog plus
// optional demo community data.
package seed

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	entrypoint "github.com/diarra2704/oikos/internal/platform/cmd"
	"github.com/diarra2704/oikos/internal/services/community/seed"
	communitysqlite "github.com/diarra2704/oikos/internal/services/community/storage/sqlite"
	recognitionapp "github.com/diarra2704/oikos/internal/services/recognition/app"
	recognitionsqlite "github.com/diarra2704/oikos/internal/services/recognition/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	RecognitionDBPath string `env:"OIKOS_SEED_RECOGNITION_DB_PATH" envDefault:"data/recognition.db"`
	CommunityDBPath   string `env:"OIKOS_SEED_COMMUNITY_DB_PATH" envDefault:"data/community.db"`
	Demo              bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.RecognitionDBPath, "recognition-db-path", cfg.RecognitionDBPath, "The recognition SQLite database path")
	fs.StringVar(&cfg.CommunityDBPath, "community-db-path", cfg.CommunityDBPath, "The community SQLite database path")
	fs.BoolVar(&cfg.Demo, "demo", false, "Also load demo community data")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the seed command. Seeding is idempotent.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		recognitionStore, err := recognitionsqlite.Open(cfg.RecognitionDBPath)
		if err != nil {
			return fmt.Errorf("open recognition store: %w", err)
		}
		defer recognitionStore.Close()

		count, err := seed.Badges(ctx, recognitionapp.NewBadgeStoreAdapter(recognitionStore))
		if err != nil {
			return fmt.Errorf("seed badge catalog: %w", err)
		}
		log.Printf("badge catalog: %d badges seeded", count)

		if !cfg.Demo {
			return nil
		}

		communityStore, err := communitysqlite.Open(cfg.CommunityDBPath)
		if err != nil {
			return fmt.Errorf("open community store: %w", err)
		}
		defer communityStore.Close()

		if err := seed.Demo(ctx, communityStore, time.Now()); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		log.Printf("demo community data seeded")
		return nil
	})
}
