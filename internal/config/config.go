package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Pack struct {
		TTL string `yaml:"ttl"`
	} `yaml:"pack"`
	Game struct {
		PackInfoDelay    string `yaml:"packInfoDelay"`
		ThemeIntroDelay  string `yaml:"themeIntroDelay"`
		AttentionDelay   string `yaml:"attentionDelay"`
		AnswerWait       string `yaml:"answerWait"`
		FloorHold        string `yaml:"floorHold"`
		CorrectionWindow string `yaml:"correctionWindow"`
		NoOutcomeDelay   string `yaml:"noOutcomeDelay"`

		DisputeWindow         string `yaml:"disputeWindow"`
		ClaimExtension        string `yaml:"claimExtension"`
		SubmitExtension       string `yaml:"submitExtension"`
		FloorTimeoutExtension string `yaml:"floorTimeoutExtension"`
		CorrectionExtension   string `yaml:"correctionExtension"`

		TeardownCooldown string `yaml:"teardownCooldown"`
		AbortCooldown    string `yaml:"abortCooldown"`
		PauseAllowance   int    `yaml:"pauseAllowance"`
		RevealThreshold  int    `yaml:"revealThreshold"`
		RevealCadence    string `yaml:"revealCadence"`
	} `yaml:"game"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or
// malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
