package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Config - конфигурация приложения. Читается из JSON-файла,
// путь задаётся переменной CONFIG_PATH; без файла работают значения по умолчанию.
type Config struct {
	ServiceHost string `json:"service_host"`
	ServicePort int    `json:"service_port"`

	EnableHTTPS bool   `json:"enable_https"`
	CertFile    string `json:"cert_file"`
	KeyFile     string `json:"key_file"`

	JWTSecret             string        `json:"jwt_secret"`
	JWTAccessTokenExpire  time.Duration `json:"jwt_access_token_expire"`
	JWTRefreshTokenExpire time.Duration `json:"jwt_refresh_token_expire"`

	SessionTTL time.Duration `json:"session_ttl"`
	PageSize   int           `json:"page_size"`

	AdminLogin    string `json:"admin_login"`
	AdminPassword string `json:"admin_password"`
}

func defaultConfig() *Config {
	return &Config{
		ServiceHost:           "0.0.0.0",
		ServicePort:           8080,
		JWTSecret:             "dev-secret-change-me",
		JWTAccessTokenExpire:  15 * time.Minute,
		JWTRefreshTokenExpire: 7 * 24 * time.Hour,
		SessionTTL:            24 * time.Hour,
		PageSize:              20,
		AdminLogin:            "Manager_Alex",
		AdminPassword:         "qwer1234qwer",
	}
}

// NewConfig - загрузка конфигурации
func NewConfig() (*Config, error) {
	conf := defaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.json"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logrus.Warnf("config file not found: %s, using default config", path)
		return conf, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		conf.JWTSecret = secret
	}
	return conf, nil
}
