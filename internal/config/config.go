package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Transcode     TranscodeConfig     `mapstructure:"transcode"`
	Search        SearchConfig        `mapstructure:"search"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Mode    string `mapstructure:"mode"`
	Port    int    `mapstructure:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres | sqlite
	Path            string `mapstructure:"path"`   // sqlite 文件路径
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
}

// DSN 返回PostgreSQL连接字符串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr 返回Redis地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Brokers []string          `mapstructure:"brokers"`
	Topics  map[string]string `mapstructure:"topics"`
	GroupID string            `mapstructure:"group_id"`
}

// VideoEventsTopic 返回视频事件 topic
func (k *KafkaConfig) VideoEventsTopic() string {
	if t := k.Topics["video_events"]; t != "" {
		return t
	}
	return "video_events"
}

// ElasticsearchConfig Elasticsearch配置
type ElasticsearchConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Hosts   []string          `mapstructure:"hosts"`
	Index   map[string]string `mapstructure:"index"`
}

// VideosIndex 返回视频索引名
func (e *ElasticsearchConfig) VideosIndex() string {
	if idx := e.Index["videos"]; idx != "" {
		return idx
	}
	return "videos"
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpireMinutes int    `mapstructure:"expire_minutes"`
}

// ExpireDuration 返回过期时间
func (j *JWTConfig) ExpireDuration() time.Duration {
	return time.Duration(j.ExpireMinutes) * time.Minute
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// StorageConfig 媒体文件存储配置
type StorageConfig struct {
	Backend           string `mapstructure:"backend"` // local | minio
	VideoDir          string `mapstructure:"video_dir"`
	ThumbnailDir      string `mapstructure:"thumbnail_dir"`
	ProfilePictureDir string `mapstructure:"profile_picture_dir"`
	BannerDir         string `mapstructure:"banner_dir"`
	DefaultThumbnail  string `mapstructure:"default_thumbnail"`
	MaxVideoSizeMB    int64  `mapstructure:"max_video_size_mb"`
	MaxImageSizeMB    int64  `mapstructure:"max_image_size_mb"`
}

// MaxVideoBytes 视频上传大小上限（字节）
func (s *StorageConfig) MaxVideoBytes() int64 {
	return s.MaxVideoSizeMB * 1024 * 1024
}

// MaxImageBytes 图片上传大小上限（字节）
func (s *StorageConfig) MaxImageBytes() int64 {
	return s.MaxImageSizeMB * 1024 * 1024
}

// TranscodeConfig 外部转码工具配置
type TranscodeConfig struct {
	FFmpegPath             string `mapstructure:"ffmpeg_path"`
	ThumbnailOffsetSeconds int    `mapstructure:"thumbnail_offset_seconds"`
	TimeoutSeconds         int    `mapstructure:"timeout_seconds"`
}

// ThumbnailOffset 截帧偏移
func (t *TranscodeConfig) ThumbnailOffset() time.Duration {
	return time.Duration(t.ThumbnailOffsetSeconds) * time.Second
}

// Timeout 单次调用超时
func (t *TranscodeConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// SearchConfig 搜索配置
type SearchConfig struct {
	Engine          string `mapstructure:"engine"` // database | elasticsearch
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
	ReindexMinutes  int    `mapstructure:"reindex_minutes"`
}

// CacheTTL 榜单缓存有效期
func (s *SearchConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// 全局配置实例
var globalConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vidhub")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.mode", "debug")
	v.SetDefault("app.port", 8000)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/vidhub.db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 3600)

	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("minio.bucket", "vidhub-media")
	v.SetDefault("kafka.group_id", "vidhub-search-indexer")

	v.SetDefault("jwt.expire_minutes", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.video_dir", "data/static/videos")
	v.SetDefault("storage.thumbnail_dir", "data/static/thumbnails")
	v.SetDefault("storage.profile_picture_dir", "data/static/profile_pictures")
	v.SetDefault("storage.banner_dir", "data/static/banners")
	v.SetDefault("storage.default_thumbnail", "default_video.jpg")
	v.SetDefault("storage.max_video_size_mb", 500)
	v.SetDefault("storage.max_image_size_mb", 10)

	v.SetDefault("transcode.ffmpeg_path", "ffmpeg")
	v.SetDefault("transcode.thumbnail_offset_seconds", 5)
	v.SetDefault("transcode.timeout_seconds", 30)

	v.SetDefault("search.engine", "database")
	v.SetDefault("search.cache_ttl_seconds", 30)
	v.SetDefault("search.reindex_minutes", 10)
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// 设置配置文件路径
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 环境变量覆盖，例如 JWT_SECRET -> jwt.secret
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &cfg

	return &cfg, nil
}

// Validate 校验必填项与枚举值
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret must be set")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	switch c.Storage.Backend {
	case "local", "minio":
	default:
		return fmt.Errorf("unsupported storage.backend %q", c.Storage.Backend)
	}
	switch c.Search.Engine {
	case "database", "elasticsearch":
	default:
		return fmt.Errorf("unsupported search.engine %q", c.Search.Engine)
	}
	return nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded, please call Load() first")
	}
	return globalConfig
}
