package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Secrets holds all externally supplied credentials. They come from the
// process environment (optionally seeded from a local .env file) and are
// never written to config files or logs.
type Secrets struct {
	OpenAIAPIKey  string // OPENAI_API_KEY
	GeminiAPIKey  string // GEMINI_API_KEY
	SerpAPIKey    string // SERPAPI_API_KEY
	TelegramToken string // TELEGRAM_BOT_TOKEN
}

// LoadSecrets reads credentials from the environment. A missing .env file
// is not an error; production deployments inject real environment variables.
func LoadSecrets() *Secrets {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system environment variables.")
	}

	return &Secrets{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		SerpAPIKey:    os.Getenv("SERPAPI_API_KEY"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}
}

// Missing reports which mandatory credentials are absent for the given
// LLM provider types. The search key is always required because every
// tool adapter depends on it. Providers that need no credential (ollama)
// contribute nothing to the result.
func (s *Secrets) Missing(providerTypes []string) []string {
	var missing []string

	for _, t := range providerTypes {
		switch t {
		case "openai":
			if s.OpenAIAPIKey == "" {
				missing = append(missing, "OPENAI_API_KEY")
			}
		case "gemini":
			if s.GeminiAPIKey == "" {
				missing = append(missing, "GEMINI_API_KEY")
			}
		}
	}

	if s.SerpAPIKey == "" {
		missing = append(missing, "SERPAPI_API_KEY")
	}

	return missing
}
