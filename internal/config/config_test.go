package config

import "testing"

func validConfig() *Config {
	return &Config{
		Port:             "8390",
		Env:              "development",
		DBPassword:       "password",
		DiscordPublicKey: "aa",
	}
}

func TestValidateRequiresPort(t *testing.T) {
	cfg := validConfig()
	cfg.Port = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing PORT")
	}
}

func TestValidateDevelopmentDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("development config should validate, got %v", err)
	}
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{
		Port:             "8390",
		Env:              "production",
		DBPassword:       "s3cure-enough-for-tests",
		DBSSLMode:        "require",
		DiscordPublicKey: "aa",
		DiscordBotToken:  "token",
		DiscordChannelID: "123",
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid production config, got %v", err)
	}

	t.Run("missing public key", func(t *testing.T) {
		c := *cfg
		c.DiscordPublicKey = ""
		if err := c.Validate(); err == nil {
			t.Error("expected error for missing DISCORD_PUBLIC_KEY in production")
		}
	})

	t.Run("default db password", func(t *testing.T) {
		c := *cfg
		c.DBPassword = "password"
		if err := c.Validate(); err == nil {
			t.Error("expected error for default DB_PASSWORD in production")
		}
	})

	t.Run("missing bot credentials", func(t *testing.T) {
		c := *cfg
		c.DiscordBotToken = ""
		if err := c.Validate(); err == nil {
			t.Error("expected error for missing bot credentials in production")
		}
	})
}
