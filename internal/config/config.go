package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Store       Store
	Wizard      Wizard

	Supabase Supabase `envPrefix:"SUPABASE_"`
	Redis    Redis    `envPrefix:"REDIS_"`
}

// Store selects the persistence gateway: sqlite and mysql go through gorm,
// supabase goes through PostgREST.
type Store struct {
	Driver      string `env:"STORE_DRIVER" envDefault:"sqlite"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"meet-and-greet.db"`
}

type Supabase struct {
	URL        string `env:"URL"`
	ServiceKey string `env:"SERVICE_ROLE_KEY"`
	Table      string `env:"TABLE" envDefault:"meeting_applications"`
}

// Redis is optional; wizard sessions stay in process memory when Addr is empty.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Wizard struct {
	SessionTTL    time.Duration `env:"WIZARD_SESSION_TTL" envDefault:"24h"`
	SubmitTimeout time.Duration `env:"SUBMIT_TIMEOUT" envDefault:"10s"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
