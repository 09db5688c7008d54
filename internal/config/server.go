package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	// RoundCooldownSeconds gates how soon a completed room accepts joins again.
	RoundCooldownSeconds int `env:"ROUND_COOLDOWN_SECONDS" envDefault:"10"`
	// CountdownSeconds is broadcast with the game-starting signal.
	CountdownSeconds int `env:"GAME_COUNTDOWN_SECONDS" envDefault:"5"`

	SeedDefaultRooms bool `env:"SEED_DEFAULT_ROOMS" envDefault:"true"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
