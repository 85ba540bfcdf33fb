package cli

import (
	"context"
	"log"

	"curare-challenge/internal/catalog"
	"curare-challenge/internal/config"
	"curare-challenge/internal/domain"
	pgstore "curare-challenge/internal/infra/postgres"
	"github.com/spf13/cobra"
)

// NewSeedCmd stores the built-in challenge in Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Store the built-in CURARE challenge in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}
			db, err := openBun(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			def := builtInDefinition(cfg)
			if err := pgstore.SeedChallenge(cmd.Context(), db, def); err != nil {
				return err
			}
			log.Printf("challenge %s seeded", def.ID)
			return nil
		},
	}
}

// ensureBuiltInChallenge stores the built-in challenge when Postgres has no
// challenge under the configured id yet. Existing rows are left untouched.
func ensureBuiltInChallenge(ctx context.Context, cfg config.Config) error {
	db, err := openBun(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	def := builtInDefinition(cfg)
	inserted, err := pgstore.EnsureChallenge(ctx, db, def)
	if err != nil {
		return err
	}
	if inserted {
		log.Printf("challenge %s seeded", def.ID)
	}
	return nil
}

func builtInDefinition(cfg config.Config) domain.Definition {
	def := catalog.Definition()
	if cfg.Challenge.ID != "" {
		def.ID = cfg.Challenge.ID
	}
	return def
}
