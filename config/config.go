package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Gallery    GalleryConfig    `mapstructure:"gallery"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Cleanup    CleanupConfig    `mapstructure:"cleanup"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	LogLevel     string        `mapstructure:"log_level"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type MongoConfig struct {
	URI      string        `mapstructure:"uri"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type UploadConfig struct {
	MaxSize      int64    `mapstructure:"max_size"`
	UploadDir    string   `mapstructure:"upload_dir"`
	ProcessedDir string   `mapstructure:"processed_dir"`
	GalleryDir   string   `mapstructure:"gallery_dir"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type GalleryConfig struct {
	FreeLimit int64 `mapstructure:"free_limit"`
}

type ProcessingConfig struct {
	MaxConcurrent     int   `mapstructure:"max_concurrent"`
	QueueTimeout      int   `mapstructure:"queue_timeout"`
	DefaultTolerance  int   `mapstructure:"default_tolerance"`
	ParallelThreshold int   `mapstructure:"parallel_threshold"`
	Workers           int   `mapstructure:"workers"`
	JPEGQuality       int   `mapstructure:"jpeg_quality"`
	MaxPixels         int64 `mapstructure:"max_pixels"`
}

type CleanupConfig struct {
	Interval string        `mapstructure:"interval"`
	MaxAge   time.Duration `mapstructure:"max_age"`
}

// Load 从 YAML 文件加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// New 使用默认配置路径加载配置
func New() *Config {
	cfg, err := Load("config.yaml")
	if err != nil {
		return fromEnv()
	}
	return cfg
}

// fromEnv 在没有配置文件时仍然允许通过环境变量覆盖默认值
func fromEnv() *Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Default()
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.log_level", d.Server.LogLevel)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("mongo.uri", d.Mongo.URI)
	v.SetDefault("mongo.database", d.Mongo.Database)
	v.SetDefault("mongo.timeout", d.Mongo.Timeout)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.ttl", d.Redis.TTL)

	v.SetDefault("upload.max_size", d.Upload.MaxSize)
	v.SetDefault("upload.upload_dir", d.Upload.UploadDir)
	v.SetDefault("upload.processed_dir", d.Upload.ProcessedDir)
	v.SetDefault("upload.gallery_dir", d.Upload.GalleryDir)
	v.SetDefault("upload.allowed_types", d.Upload.AllowedTypes)

	v.SetDefault("auth.jwt_secret", d.Auth.JWTSecret)
	v.SetDefault("auth.token_ttl", d.Auth.TokenTTL)
	v.SetDefault("auth.bcrypt_cost", d.Auth.BcryptCost)

	v.SetDefault("gallery.free_limit", d.Gallery.FreeLimit)

	v.SetDefault("processing.max_concurrent", d.Processing.MaxConcurrent)
	v.SetDefault("processing.queue_timeout", d.Processing.QueueTimeout)
	v.SetDefault("processing.default_tolerance", d.Processing.DefaultTolerance)
	v.SetDefault("processing.parallel_threshold", d.Processing.ParallelThreshold)
	v.SetDefault("processing.workers", d.Processing.Workers)
	v.SetDefault("processing.jpeg_quality", d.Processing.JPEGQuality)
	v.SetDefault("processing.max_pixels", d.Processing.MaxPixels)

	v.SetDefault("cleanup.interval", d.Cleanup.Interval)
	v.SetDefault("cleanup.max_age", d.Cleanup.MaxAge)
}

// Default 返回内置默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":3000",
			Mode:         "debug",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "imageprocessor",
			Timeout:  10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			TTL:      5 * time.Minute,
		},
		Upload: UploadConfig{
			MaxSize:      10 * 1024 * 1024,
			UploadDir:    "./uploads",
			ProcessedDir: "./processed",
			GalleryDir:   "./gallery",
			AllowedTypes: []string{
				"image/jpeg", "image/jpg", "image/png", "image/gif",
				"image/webp", "image/bmp", "image/tiff",
			},
		},
		Auth: AuthConfig{
			JWTSecret:  "your-secret-key",
			TokenTTL:   7 * 24 * time.Hour,
			BcryptCost: 12,
		},
		Gallery: GalleryConfig{
			FreeLimit: 3,
		},
		Processing: ProcessingConfig{
			MaxConcurrent:     4,
			QueueTimeout:      30,
			DefaultTolerance:  40,
			ParallelThreshold: 1 << 20,
			Workers:           4,
			JPEGQuality:       80,
			MaxPixels:         268402689,
		},
		Cleanup: CleanupConfig{
			Interval: "@every 5m",
			MaxAge:   5 * time.Minute,
		},
	}
}
