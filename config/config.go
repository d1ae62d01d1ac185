package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	OAuth      OAuthConfig
	Cloudinary CloudinaryConfig
	Firebase   FirebaseConfig
	RevenueCat RevenueCatConfig
	Discovery  DiscoveryConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

// RevenueCatConfig for the entitlement probe against the RevenueCat REST API.
type RevenueCatConfig struct {
	APIKey        string
	EntitlementID string
}

type DiscoveryConfig struct {
	DefaultRadiusKm float64
	MaxResults      int
}

// Load reads configuration from environment variables with an optional .env
// file, falling back to development defaults.
func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DB_DSN", "zoodate:zoodate@tcp(localhost:3306)/zoodate?charset=utf8mb4&parseTime=True&loc=Local")
	viper.SetDefault("JWT_ACCESS_SECRET", "change-me-in-production")
	viper.SetDefault("JWT_REFRESH_SECRET", "change-me-refresh")
	viper.SetDefault("DISCOVERY_RADIUS_KM", 10.0)
	viper.SetDefault("DISCOVERY_MAX_RESULTS", 50)

	return &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             viper.GetString("DB_DSN"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  viper.GetString("JWT_ACCESS_SECRET"),
			RefreshSecret: viper.GetString("JWT_REFRESH_SECRET"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "zoodate",
		},
		OAuth: OAuthConfig{
			GoogleClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  viper.GetString("GOOGLE_REDIRECT_URL"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: viper.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:    viper.GetString("CLOUDINARY_API_KEY"),
			APISecret: viper.GetString("CLOUDINARY_API_SECRET"),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: viper.GetString("FIREBASE_SERVICE_ACCOUNT_PATH"),
		},
		RevenueCat: RevenueCatConfig{
			APIKey:        viper.GetString("REVENUECAT_API_KEY"),
			EntitlementID: viper.GetString("REVENUECAT_ENTITLEMENT_ID"),
		},
		Discovery: DiscoveryConfig{
			DefaultRadiusKm: viper.GetFloat64("DISCOVERY_RADIUS_KM"),
			MaxResults:      viper.GetInt("DISCOVERY_MAX_RESULTS"),
		},
	}
}
