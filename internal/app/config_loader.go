package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

// EnvPrefix prefixes environment overrides, e.g. YTMP3_TRANSCODE_BITRATE
const EnvPrefix = "YTMP3"

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	bindKeys(config, v.SetDefault)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.ytmp3")
		v.AddConfigPath("/etc/ytmp3")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// bindKeys passes every config key with its value in c to set. Registering
// defaults this way lets AutomaticEnv override keys absent from the file.
func bindKeys(c *domain.Config, set func(key string, value any)) {
	set("server.host", c.Server.Host)
	set("server.port", c.Server.Port)

	set("download.output_dir", c.Download.OutputDir)
	set("download.chunk_size", c.Download.ChunkSize)
	set("download.queue_size", c.Download.QueueSize)

	set("source.ytdlp_binary", c.Source.YTDLPBinary)
	set("source.audio_format", c.Source.AudioFormat)
	set("source.cookie_file", c.Source.CookieFile)
	set("source.playlist_backend", c.Source.PlaylistBackend)

	set("transcode.ffmpeg_binary", c.Transcode.FFmpegBinary)
	set("transcode.ffprobe_binary", c.Transcode.FFprobeBinary)
	set("transcode.bitrate", c.Transcode.Bitrate)
	set("transcode.codec", c.Transcode.Codec)

	set("publish.enabled", c.Publish.Enabled)
	set("publish.bucket", c.Publish.Bucket)
	set("publish.region", c.Publish.Region)
	set("publish.prefix", c.Publish.Prefix)
	set("publish.access_key", c.Publish.AccessKey)
	set("publish.secret_key", c.Publish.SecretKey)

	set("notification.enabled", c.Notification.Enabled)
	set("notification.method", c.Notification.Method)

	set("logging.level", c.Logging.Level)
	set("logging.format", c.Logging.Format)
	set("logging.output_path", c.Logging.OutputPath)
	set("logging.logs_dir", c.Logging.LogsDir)
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.OutputDir = expandPath(config.Download.OutputDir)
	config.Source.CookieFile = expandPath(config.Source.CookieFile)
	config.Logging.LogsDir = expandPath(config.Logging.LogsDir)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Download.OutputDir == "" {
		return fmt.Errorf("download output directory not configured")
	}

	if config.Download.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be positive")
	}

	if config.Download.QueueSize < 1 {
		return fmt.Errorf("queue size must be at least 1")
	}

	switch config.Source.PlaylistBackend {
	case domain.PlaylistBackendLibrary, domain.PlaylistBackendCLI:
	default:
		return fmt.Errorf("unknown playlist backend: %s", config.Source.PlaylistBackend)
	}

	if config.Transcode.FFmpegBinary == "" {
		return fmt.Errorf("ffmpeg binary not configured")
	}

	if config.Publish.Enabled && config.Publish.Bucket == "" {
		return fmt.Errorf("publish bucket not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	bindKeys(config, v.Set)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
