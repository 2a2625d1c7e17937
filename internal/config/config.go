package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/scoutscape/internal/domain"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	RedisStreams RedisStreamsConfig
	Cache        CacheConfig
	Log          LogConfig
	Worker       WorkerConfig
	Scouting     ScoutingConfig
	Overpass     OverpassConfig
	Nominatim    NominatimConfig
	Weather      WeatherConfig
	Traffic      TrafficConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type RedisStreamsConfig struct {
	Host          string
	Port          int
	Password      string
	DB            int
	RequestStream string
	DoneStream    string
	MaxLen        int64
}

type CacheConfig struct {
	GeocodeCacheTTL time.Duration
	WeatherCacheTTL time.Duration
	TrafficCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	ConsumerName      string
	StreamReadTimeout time.Duration
	BatchSize         int64
	MaxRetries        int
}

type ScoutingConfig struct {
	MinLat        float64
	MinLon        float64
	MaxLat        float64
	MaxLon        float64
	DefaultRadius int
	MinRadius     int
	MaxRadius     int
	TopN          int
	SessionTTL    time.Duration
	TimeZone      string
}

type OverpassConfig struct {
	Endpoint    string
	AreaName    string
	AdminLevel  string
	Timeout     time.Duration
	MaxParallel int
	LoadOnStart bool
}

type NominatimConfig struct {
	BaseURL   string
	UserAgent string
	City      string
	Country   string
	Timeout   time.Duration
}

type WeatherConfig struct {
	BaseURL  string
	TimeZone string
	Timeout  time.Duration
}

type TrafficConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// .env необязателен: в контейнере всё приходит из окружения
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RedisStreams: RedisStreamsConfig{
			Host:          viper.GetString("STREAMS_REDIS_HOST"),
			Port:          viper.GetInt("STREAMS_REDIS_PORT"),
			Password:      viper.GetString("STREAMS_REDIS_PASSWORD"),
			DB:            viper.GetInt("STREAMS_REDIS_DB"),
			RequestStream: viper.GetString("STREAM_ANALYSIS_REQUEST"),
			DoneStream:    viper.GetString("STREAM_ANALYSIS_DONE"),
			MaxLen:        viper.GetInt64("STREAM_MAX_LEN"),
		},
		Cache: CacheConfig{
			GeocodeCacheTTL: time.Duration(viper.GetInt("GEOCODE_CACHE_TTL")) * time.Second,
			WeatherCacheTTL: time.Duration(viper.GetInt("WEATHER_CACHE_TTL")) * time.Second,
			TrafficCacheTTL: time.Duration(viper.GetInt("TRAFFIC_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			ConsumerName:      viper.GetString("WORKER_CONSUMER_NAME"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			BatchSize:         viper.GetInt64("WORKER_BATCH_SIZE"),
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
		},
		Scouting: ScoutingConfig{
			MinLat:        viper.GetFloat64("SCOUT_MIN_LAT"),
			MinLon:        viper.GetFloat64("SCOUT_MIN_LON"),
			MaxLat:        viper.GetFloat64("SCOUT_MAX_LAT"),
			MaxLon:        viper.GetFloat64("SCOUT_MAX_LON"),
			DefaultRadius: viper.GetInt("SCOUT_DEFAULT_RADIUS"),
			MinRadius:     viper.GetInt("SCOUT_MIN_RADIUS"),
			MaxRadius:     viper.GetInt("SCOUT_MAX_RADIUS"),
			TopN:          viper.GetInt("SCOUT_TOP_N"),
			SessionTTL:    time.Duration(viper.GetInt("SCOUT_SESSION_TTL")) * time.Second,
			TimeZone:      viper.GetString("SCOUT_TIMEZONE"),
		},
		Overpass: OverpassConfig{
			Endpoint:    viper.GetString("OVERPASS_ENDPOINT"),
			AreaName:    viper.GetString("OVERPASS_AREA_NAME"),
			AdminLevel:  viper.GetString("OVERPASS_ADMIN_LEVEL"),
			Timeout:     time.Duration(viper.GetInt("OVERPASS_TIMEOUT")) * time.Second,
			MaxParallel: viper.GetInt("OVERPASS_MAX_PARALLEL"),
			LoadOnStart: viper.GetBool("OVERPASS_LOAD_ON_START"),
		},
		Nominatim: NominatimConfig{
			BaseURL:   viper.GetString("NOMINATIM_BASE_URL"),
			UserAgent: viper.GetString("NOMINATIM_USER_AGENT"),
			City:      viper.GetString("NOMINATIM_CITY"),
			Country:   viper.GetString("NOMINATIM_COUNTRY"),
			Timeout:   time.Duration(viper.GetInt("NOMINATIM_TIMEOUT")) * time.Second,
		},
		Weather: WeatherConfig{
			BaseURL:  viper.GetString("WEATHER_BASE_URL"),
			TimeZone: viper.GetString("WEATHER_TIMEZONE"),
			Timeout:  time.Duration(viper.GetInt("WEATHER_TIMEOUT")) * time.Second,
		},
		Traffic: TrafficConfig{
			BaseURL: viper.GetString("TOMTOM_BASE_URL"),
			APIKey:  viper.GetString("TOMTOM_API_KEY"),
			Timeout: time.Duration(viper.GetInt("TOMTOM_TIMEOUT")) * time.Second,
		},
	}

	// Стримы по умолчанию живут в том же Redis, что и кеш
	if cfg.RedisStreams.Host == "" {
		cfg.RedisStreams.Host = cfg.Redis.Host
		cfg.RedisStreams.Port = cfg.Redis.Port
		cfg.RedisStreams.Password = cfg.Redis.Password
		cfg.RedisStreams.DB = cfg.Redis.DB
	}

	if _, err := cfg.BoundingBox(); err != nil {
		return nil, fmt.Errorf("invalid scouting boundary: %w", err)
	}
	if cfg.Scouting.MinRadius <= 0 || cfg.Scouting.MinRadius > cfg.Scouting.MaxRadius {
		return nil, fmt.Errorf("invalid scouting radius bounds: %d..%d", cfg.Scouting.MinRadius, cfg.Scouting.MaxRadius)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("API_HOST", "0.0.0.0")
	viper.SetDefault("API_PORT", 8080)
	viper.SetDefault("API_ENV", "development")

	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)

	viper.SetDefault("STREAM_ANALYSIS_REQUEST", domain.StreamAnalysisRequest)
	viper.SetDefault("STREAM_ANALYSIS_DONE", domain.StreamAnalysisDone)
	viper.SetDefault("STREAM_MAX_LEN", 10000)

	viper.SetDefault("GEOCODE_CACHE_TTL", 86400)
	viper.SetDefault("WEATHER_CACHE_TTL", 600)
	viper.SetDefault("TRAFFIC_CACHE_TTL", 300)

	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("WORKER_ENABLED", true)
	viper.SetDefault("WORKER_CONSUMER_GROUP", "scout-analysis-workers")
	viper.SetDefault("WORKER_CONSUMER_NAME", "analysis-worker-1")
	viper.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	viper.SetDefault("WORKER_BATCH_SIZE", 10)
	viper.SetDefault("WORKER_MAX_RETRIES", 3)

	viper.SetDefault("SCOUT_MIN_LAT", 49.198)
	viper.SetDefault("SCOUT_MIN_LON", -123.27)
	viper.SetDefault("SCOUT_MAX_LAT", 49.315)
	viper.SetDefault("SCOUT_MAX_LON", -123.02)
	viper.SetDefault("SCOUT_DEFAULT_RADIUS", 250)
	viper.SetDefault("SCOUT_MIN_RADIUS", 50)
	viper.SetDefault("SCOUT_MAX_RADIUS", 1500)
	viper.SetDefault("SCOUT_TOP_N", 20)
	viper.SetDefault("SCOUT_SESSION_TTL", 3600)
	viper.SetDefault("SCOUT_TIMEZONE", "America/Vancouver")

	viper.SetDefault("OVERPASS_ENDPOINT", "https://overpass-api.de/api/interpreter")
	viper.SetDefault("OVERPASS_AREA_NAME", "Vancouver")
	viper.SetDefault("OVERPASS_ADMIN_LEVEL", "8")
	viper.SetDefault("OVERPASS_TIMEOUT", 90)
	viper.SetDefault("OVERPASS_MAX_PARALLEL", 1)
	viper.SetDefault("OVERPASS_LOAD_ON_START", true)

	viper.SetDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	viper.SetDefault("NOMINATIM_USER_AGENT", "scoutscape/1.0")
	viper.SetDefault("NOMINATIM_CITY", "Vancouver")
	viper.SetDefault("NOMINATIM_COUNTRY", "Canada")
	viper.SetDefault("NOMINATIM_TIMEOUT", 10)

	viper.SetDefault("WEATHER_BASE_URL", "https://api.open-meteo.com")
	viper.SetDefault("WEATHER_TIMEZONE", "America/Vancouver")
	viper.SetDefault("WEATHER_TIMEOUT", 10)

	viper.SetDefault("TOMTOM_BASE_URL", "https://api.tomtom.com")
	viper.SetDefault("TOMTOM_TIMEOUT", 10)
}

// BoundingBox возвращает границу разведки как value object
func (c *Config) BoundingBox() (domain.BoundingBox, error) {
	return domain.NewBoundingBox(c.Scouting.MinLat, c.Scouting.MinLon, c.Scouting.MaxLat, c.Scouting.MaxLon)
}

// Location возвращает часовой пояс разведки; при ошибке - UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scouting.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
