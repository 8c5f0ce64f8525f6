package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/223nobody/GameAnalysis/internal/config"
	"github.com/223nobody/GameAnalysis/internal/db"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status or version")
		to      = flag.Int64("to", 0, "With up, stop after this version (0 applies everything)")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Warn().Err(err).Msg("could not load .env file")
		}
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load database config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn, dialect, err := db.Open(ctx, db.Config{Driver: dbCfg.Driver, DSN: dbCfg.DSN})
	if err != nil {
		log.Fatal().Err(err).Str("driver", dbCfg.Driver).Msg("failed to open database")
	}
	defer conn.Close()

	migrator, err := db.NewMigrator(conn, dialect)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build migrator")
	}

	log.Info().Str("driver", dbCfg.Driver).Str("command", *command).Msg("connected to database")

	switch *command {
	case "up":
		if *to > 0 {
			_, err = migrator.UpTo(ctx, *to)
		} else {
			_, err = migrator.Up(ctx)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations up")
		}
		log.Info().Msg("migrations applied successfully")

	case "down":
		res, err := migrator.Down(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations down")
		}
		if res != nil && res.Source != nil {
			log.Info().Int64("version", res.Source.Version).Msg("migration rolled back")
		}

	case "status":
		statuses, err := migrator.Status(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get migration status")
		}
		for _, st := range statuses {
			ev := log.Info().Int64("version", st.Source.Version).Str("state", string(st.State))
			if !st.AppliedAt.IsZero() {
				ev = ev.Time("applied_at", st.AppliedAt)
			}
			ev.Msg(st.Source.Path)
		}

	case "version":
		v, err := migrator.Version(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read database version")
		}
		log.Info().Int64("version", v).Msg("current database version")

	default:
		log.Fatal().Str("command", *command).Msg("unknown command. Use: up, down, status or version")
	}
}
