package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		// Path of the sqlite file; empty keeps all state in memory.
		Path string
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		VerifyPasswords bool
	}
	Submit struct {
		DelayMS        int
		TimeoutSeconds int
	}
}

// SubmitDelay is the processing pause applied to form submissions.
func (c Config) SubmitDelay() time.Duration {
	return time.Duration(c.Submit.DelayMS) * time.Millisecond
}

func (c Config) SubmitTimeout() time.Duration {
	return time.Duration(c.Submit.TimeoutSeconds) * time.Second
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// .env never overrides variables already present in the environment
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("WOLFSTREET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.path", "data/wolfstreet.db")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "wolfstreet")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 24*60)
	v.SetDefault("auth.verifypasswords", false)
	v.SetDefault("submit.delayms", 0)
	v.SetDefault("submit.timeoutseconds", 30)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}
