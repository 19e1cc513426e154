package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/constitution-games/assets"
	"github.com/robalobadob/constitution-games/internal/config"
	"github.com/robalobadob/constitution-games/internal/content"
	"github.com/robalobadob/constitution-games/internal/httpserver"
	"github.com/robalobadob/constitution-games/internal/rng"
	"github.com/robalobadob/constitution-games/internal/schedule"
	"github.com/robalobadob/constitution-games/internal/scoreboard"
	"github.com/robalobadob/constitution-games/internal/store"
)

func main() {
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	lib, err := content.Load(cfg.QuestionsFile, cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load game content")
	}
	log.Info().Strs("quizSets", lib.SetNames()).Int("words", len(lib.Words)).Msg("content loaded")

	db, err := scoreboard.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open db")
	}
	defer db.Close()
	migrations, err := assets.Migrations()
	if err != nil {
		log.Fatal().Err(err).Msg("load migrations")
	}
	if err := scoreboard.Migrate(db, migrations); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	var rnd rng.Source = rng.Crypto{}
	if cfg.HasSeed {
		rnd = rng.NewSeeded(cfg.Seed)
		log.Warn().Uint64("seed", cfg.Seed).Msg("using fixed random seed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := store.NewMemory[*httpserver.Session]()
	go sessions.Janitor(ctx, time.Minute, cfg.SessionTTL, httpserver.EvictSession)

	srv := httpserver.New(httpserver.Deps{
		Config:   cfg,
		Library:  lib,
		Sessions: sessions,
		Scores:   scoreboard.NewStore(db),
		Random:   rnd,
		Clock:    schedule.Clock{},
	})
	log.Info().Str("port", cfg.Port).Msg("starting games server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("shut down")
}
