package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	SQLite    SQLiteConfig
	Forecast  ForecastConfig
	Scenario  ScenarioConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type SQLiteConfig struct {
	Path string
}

type ForecastConfig struct {
	DefaultModel        string
	DefaultHorizonHours int
	MaxHorizonHours     int
	CacheTTLSeconds     int
	StreamBatchSize     int
}

// ScenarioConfig mirrors forecast.ScenarioCoefficients: the what-if weights
// are empirical, so deployments may recalibrate them without a rebuild.
type ScenarioConfig struct {
	OccupancyBusinessWeight float64
	OccupancyOffHoursWeight float64
	BusinessHoursStart      int
	BusinessHoursEnd        int
	SetpointPerDegree       float64
	ComfortSetpointC        float64
	OperatingHoursWeight    float64
	MorningTransitionStart  int
	MorningTransitionEnd    int
	EveningTransitionStart  int
	EveningTransitionEnd    int
	EfficiencyWeight        float64
	FloorFactor             float64
}

type RateLimitConfig struct {
	MaxRequestsPerMinute int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/enerboard")

	viper.SetEnvPrefix("ENERBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("sqlite.path", "./data/enerboard.db")

	viper.SetDefault("forecast.defaultModel", "simple")
	viper.SetDefault("forecast.defaultHorizonHours", 168)
	viper.SetDefault("forecast.maxHorizonHours", 8760)
	viper.SetDefault("forecast.cacheTTLSeconds", 300)
	viper.SetDefault("forecast.streamBatchSize", 24)

	viper.SetDefault("scenario.occupancyBusinessWeight", 0.6)
	viper.SetDefault("scenario.occupancyOffHoursWeight", 0.2)
	viper.SetDefault("scenario.businessHoursStart", 8)
	viper.SetDefault("scenario.businessHoursEnd", 18)
	viper.SetDefault("scenario.setpointPerDegree", 0.05)
	viper.SetDefault("scenario.comfortSetpointC", 22.0)
	viper.SetDefault("scenario.operatingHoursWeight", 0.8)
	viper.SetDefault("scenario.morningTransitionStart", 6)
	viper.SetDefault("scenario.morningTransitionEnd", 8)
	viper.SetDefault("scenario.eveningTransitionStart", 18)
	viper.SetDefault("scenario.eveningTransitionEnd", 22)
	viper.SetDefault("scenario.efficiencyWeight", 0.9)
	viper.SetDefault("scenario.floorFactor", 0.1)

	viper.SetDefault("ratelimit.maxRequestsPerMinute", 120)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
