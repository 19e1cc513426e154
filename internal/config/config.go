package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port     string
	LogLevel string
	DBPath   string

	ClientOrigin string
	JWTSecret    string
	TokenTTL     time.Duration
	CookieName   string
	Production   bool

	QuestionsFile string
	WordsFile     string

	SessionTTL       time.Duration
	SequenceInterval time.Duration
	SequenceDisplay  time.Duration
	SequencePause    time.Duration
	WordAdvanceDelay time.Duration

	// Seed fixes the random source when HasSeed is set; otherwise draws use crypto/rand.
	Seed    uint64
	HasSeed bool
}

// Load reads an optional .env file, then builds Config from the environment.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}
	return New()
}

func New() *Config {
	days, err := strconv.Atoi(getEnv("JWT_EXPIRES_DAYS", "14"))
	if err != nil || days <= 0 {
		days = 14
	}

	c := &Config{
		Port:     getEnv("PORT", "5175"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DBPath:   getEnv("DB_PATH", "./data/games.db"),

		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		TokenTTL:     time.Duration(days) * 24 * time.Hour,
		CookieName:   getEnv("COOKIE_NAME", "games_token"),
		Production:   getEnv("NODE_ENV", "development") == "production",

		QuestionsFile: getEnv("QUESTIONS_FILE", ""),
		WordsFile:     getEnv("WORDS_FILE", ""),

		SessionTTL:       getEnvDuration("SESSION_TTL", 2*time.Hour),
		SequenceInterval: getEnvDuration("SEQUENCE_INTERVAL", 800*time.Millisecond),
		SequenceDisplay:  getEnvDuration("SEQUENCE_DISPLAY", 600*time.Millisecond),
		SequencePause:    getEnvDuration("SEQUENCE_PAUSE", time.Second),
		WordAdvanceDelay: getEnvDuration("WORD_ADVANCE_DELAY", time.Second),
	}

	if v := getEnv("RNG_SEED", ""); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			log.Warn().Str("RNG_SEED", v).Msg("ignoring invalid seed")
		} else {
			c.Seed, c.HasSeed = seed, true
		}
	}
	return c
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getEnvDuration parses values like "800ms" or "2h". Invalid or non-positive
// values fall back with a warning.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str(key, v).Dur("default", fallback).Msg("invalid duration, using default")
		return fallback
	}
	return d
}
