package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix                = "INVITACIONES"
	defaultHTTPAddress       = "0.0.0.0:8000"
	defaultLogLevel          = "info"
	defaultConfirmationsPath = "data/confirmations.json"
	defaultInvitationsPath   = "data/invitations.json"
	defaultDatabasePath      = "invitaciones.db"
	defaultBaseURL           = "https://invitaciones.iux.mx/confirmacion/"
	defaultSMTPHost          = "smtp.gmail.com"
	defaultSMTPPort          = 587
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress       string
	LogLevel          string
	ConfirmationsPath string
	InvitationsPath   string
	DatabasePath      string
	BaseURL           string
	BypassEmail       string
	AdminAccessToken  string
	SMTPEnabled       bool
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SMTPFrom          string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("store.confirmations_path", defaultConfirmationsPath)
	configViper.SetDefault("store.invitations_path", defaultInvitationsPath)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("app.base_url", defaultBaseURL)
	configViper.SetDefault("smtp.enabled", false)
	configViper.SetDefault("smtp.host", defaultSMTPHost)
	configViper.SetDefault("smtp.port", defaultSMTPPort)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:       configViper.GetString("http.address"),
		LogLevel:          configViper.GetString("log.level"),
		ConfirmationsPath: configViper.GetString("store.confirmations_path"),
		InvitationsPath:   configViper.GetString("store.invitations_path"),
		DatabasePath:      configViper.GetString("database.path"),
		BaseURL:           configViper.GetString("app.base_url"),
		BypassEmail:       configViper.GetString("app.bypass_email"),
		AdminAccessToken:  configViper.GetString("admin.access_token"),
		SMTPEnabled:       configViper.GetBool("smtp.enabled"),
		SMTPHost:          configViper.GetString("smtp.host"),
		SMTPPort:          configViper.GetInt("smtp.port"),
		SMTPUsername:      configViper.GetString("smtp.username"),
		SMTPPassword:      configViper.GetString("smtp.password"),
		SMTPFrom:          configViper.GetString("smtp.from"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.ConfirmationsPath) == "" {
		return fmt.Errorf("store.confirmations_path is required")
	}
	if strings.TrimSpace(c.InvitationsPath) == "" {
		return fmt.Errorf("store.invitations_path is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("app.base_url is required")
	}
	if c.SMTPEnabled {
		if strings.TrimSpace(c.SMTPHost) == "" {
			return fmt.Errorf("smtp.host is required when smtp.enabled is set")
		}
		if strings.TrimSpace(c.SMTPFrom) == "" {
			return fmt.Errorf("smtp.from is required when smtp.enabled is set")
		}
		if c.SMTPPort <= 0 {
			return fmt.Errorf("smtp.port must be positive")
		}
	}
	return nil
}
