package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

// SessionConfig controls the API session tokens.
type SessionConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// CavosConfig points at the hosted wallet and execution service.
type CavosConfig struct {
	BaseURL   string
	AppID     string
	OrgSecret string
	Timeout   time.Duration
}

// StarknetConfig describes the price contract and the RPC nodes used to read it.
type StarknetConfig struct {
	ContractAddress string
	DefaultNetwork  string
	RPCURLs         map[string]string
	Timeout         time.Duration
	FanOutLimit     int
}

// GeocodeConfig controls address lookups used for distance ranking.
type GeocodeConfig struct {
	NominatimURL    string
	CountrySuffix   string
	UserAgent       string
	RatePerSecond   float64
	Timeout         time.Duration
	CoordinatesFile string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTL        time.Duration
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                  string
	MongoURI              string
	MongoDatabase         string
	MongoConnectTimeout   time.Duration
	SessionCollection     string
	TransactionCollection string
	AllowedOrigins        []string
	LogLevel              string
	LogFormat             string
	Session               SessionConfig
	Cavos                 CavosConfig
	Starknet              StarknetConfig
	Geocode               GeocodeConfig
}

// Load reads .env (when present) and the process environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromViper(newViper())
}

// LoadForTool is Load for command-line tools that never issue session
// tokens, so SESSION_JWT_SECRET is optional.
func LoadForTool() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return fromViper(newViper(), false)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("MONGO_URI", "mongodb://mongo:27017")
	v.SetDefault("MONGO_DB", "fernet-barato")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")
	v.SetDefault("SESSION_COLLECTION", "sessions")
	v.SetDefault("TRANSACTION_COLLECTION", "transactions")
	v.SetDefault("API_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SESSION_JWT_ISSUER", "fernet-barato-api")
	v.SetDefault("SESSION_JWT_AUDIENCE", "fernet-barato-web")
	v.SetDefault("SESSION_TTL", "24h")

	v.SetDefault("CAVOS_BASE_URL", "https://services.cavos.xyz")
	v.SetDefault("CAVOS_TIMEOUT", "30s")

	v.SetDefault("STARKNET_NETWORK", session.NetworkSepolia)
	v.SetDefault("STARKNET_SEPOLIA_RPC_URL", "https://starknet-sepolia.public.blastapi.io/rpc/v0_7")
	v.SetDefault("STARKNET_MAINNET_RPC_URL", "https://starknet-mainnet.public.blastapi.io/rpc/v0_7")
	v.SetDefault("STARKNET_RPC_TIMEOUT", "30s")
	v.SetDefault("STARKNET_FANOUT_LIMIT", 8)

	v.SetDefault("GEOCODE_NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODE_COUNTRY_SUFFIX", "Argentina")
	v.SetDefault("GEOCODE_USER_AGENT", "fernet-barato-api/1.0")
	v.SetDefault("GEOCODE_RATE_PER_SECOND", 1.0)
	v.SetDefault("GEOCODE_TIMEOUT", "5s")
	v.SetDefault("GEOCODE_COORDINATES_FILE", "configs/store_coordinates.yaml")
	v.SetDefault("GEOCODE_REDIS_DB", 0)
	v.SetDefault("GEOCODE_CACHE_TTL", "720h")
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	return fromViper(v, true)
}

func fromViper(v *viper.Viper, requireSession bool) (Config, error) {
	secret := strings.TrimSpace(v.GetString("SESSION_JWT_SECRET"))
	if secret == "" && requireSession {
		return Config{}, errors.New("SESSION_JWT_SECRET must be configured")
	}
	contract := strings.TrimSpace(v.GetString("PRICE_CONTRACT_ADDRESS"))
	if contract == "" {
		return Config{}, errors.New("PRICE_CONTRACT_ADDRESS must be configured")
	}

	network := strings.ToLower(strings.TrimSpace(v.GetString("STARKNET_NETWORK")))
	if !session.ValidNetwork(network) {
		return Config{}, fmt.Errorf("STARKNET_NETWORK %q must be one of: %s", network, strings.Join(session.Networks(), ", "))
	}

	cfg := Config{
		Addr:                  v.GetString("HTTP_ADDR"),
		MongoURI:              v.GetString("MONGO_URI"),
		MongoDatabase:         v.GetString("MONGO_DB"),
		MongoConnectTimeout:   v.GetDuration("MONGO_CONNECT_TIMEOUT"),
		SessionCollection:     v.GetString("SESSION_COLLECTION"),
		TransactionCollection: v.GetString("TRANSACTION_COLLECTION"),
		AllowedOrigins:        parseList(v.GetString("API_ALLOWED_ORIGINS"), []string{"*"}),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFormat:             v.GetString("LOG_FORMAT"),
		Session: SessionConfig{
			Secret:   []byte(secret),
			Issuer:   v.GetString("SESSION_JWT_ISSUER"),
			Audience: v.GetString("SESSION_JWT_AUDIENCE"),
			TTL:      v.GetDuration("SESSION_TTL"),
		},
		Cavos: CavosConfig{
			BaseURL:   strings.TrimRight(strings.TrimSpace(v.GetString("CAVOS_BASE_URL")), "/"),
			AppID:     strings.TrimSpace(v.GetString("CAVOS_APP_ID")),
			OrgSecret: strings.TrimSpace(v.GetString("CAVOS_ORG_SECRET")),
			Timeout:   v.GetDuration("CAVOS_TIMEOUT"),
		},
		Starknet: StarknetConfig{
			ContractAddress: contract,
			DefaultNetwork:  network,
			RPCURLs: map[string]string{
				session.NetworkSepolia: v.GetString("STARKNET_SEPOLIA_RPC_URL"),
				session.NetworkMainnet: v.GetString("STARKNET_MAINNET_RPC_URL"),
			},
			Timeout:     v.GetDuration("STARKNET_RPC_TIMEOUT"),
			FanOutLimit: v.GetInt("STARKNET_FANOUT_LIMIT"),
		},
		Geocode: GeocodeConfig{
			NominatimURL:    strings.TrimRight(strings.TrimSpace(v.GetString("GEOCODE_NOMINATIM_URL")), "/"),
			CountrySuffix:   v.GetString("GEOCODE_COUNTRY_SUFFIX"),
			UserAgent:       v.GetString("GEOCODE_USER_AGENT"),
			RatePerSecond:   v.GetFloat64("GEOCODE_RATE_PER_SECOND"),
			Timeout:         v.GetDuration("GEOCODE_TIMEOUT"),
			CoordinatesFile: strings.TrimSpace(v.GetString("GEOCODE_COORDINATES_FILE")),
			RedisAddr:       strings.TrimSpace(v.GetString("GEOCODE_REDIS_ADDR")),
			RedisPassword:   v.GetString("GEOCODE_REDIS_PASSWORD"),
			RedisDB:         v.GetInt("GEOCODE_REDIS_DB"),
			CacheTTL:        v.GetDuration("GEOCODE_CACHE_TTL"),
		},
	}

	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.Starknet.FanOutLimit <= 0 {
		cfg.Starknet.FanOutLimit = 8
	}
	return cfg, nil
}

func parseList(raw string, fallback []string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
