package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	BackendURL  string        `envconfig:"BACKEND_URL" required:"true"`
	Port        string        `envconfig:"PORT" default:"8080"`
	DBName      string        `envconfig:"DB_NAME" default:"rally.db"`
	Timezone    string        `envconfig:"TIMEZONE" default:"Local"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
	HTTPTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
	ProjectID   string        `envconfig:"GCP_PROJECT"`
	Turso       TursoConfig
	Slack       SlackConfig
	Digest      DigestConfig
}

type TursoConfig struct {
	PrimaryURL string `envconfig:"TURSO_PRIMARY_URL"`
	AuthToken  string `envconfig:"TURSO_AUTH_TOKEN"`
}

type SlackConfig struct {
	Token     string `envconfig:"SLACK_BOT_TOKEN"`
	ChannelID string `envconfig:"SLACK_CHANNEL_ID"`
}

// Enabled reports whether enough is configured to post to Slack.
func (s SlackConfig) Enabled() bool {
	return s.Token != "" && s.ChannelID != ""
}

type DigestConfig struct {
	Hour   uint `envconfig:"DIGEST_HOUR" default:"7"`
	Minute uint `envconfig:"DIGEST_MINUTE" default:"0"`
}
