package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads the dotenv files that exist, most specific first:
// .env.<APP_ENV>.local, .env.local, .env.<APP_ENV>, .env
// godotenv never overwrites a variable that is already set, so OS env wins
// and an earlier file wins over a later one. Returns the files loaded.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range dotenvCandidates(os.Getenv("APP_ENV")) {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

func dotenvCandidates(env string) []string {
	if env == "" {
		return []string{".env.local", ".env"}
	}
	return []string{".env." + env + ".local", ".env.local", ".env." + env, ".env"}
}
