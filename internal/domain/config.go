package domain

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Download     DownloadConfig     `mapstructure:"download"`
	Source       SourceConfig       `mapstructure:"source"`
	Transcode    TranscodeConfig    `mapstructure:"transcode"`
	Publish      PublishConfig      `mapstructure:"publish"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	ChunkSize int    `mapstructure:"chunk_size"` // bytes per network read
	QueueSize int    `mapstructure:"queue_size"` // jobs waiting for the worker
}

// Playlist backends
const (
	PlaylistBackendLibrary = "library" // github.com/ytget/ytdlp
	PlaylistBackendCLI     = "cli"     // yt-dlp --flat-playlist
)

// SourceConfig configures the media source (yt-dlp)
type SourceConfig struct {
	YTDLPBinary     string `mapstructure:"ytdlp_binary"`
	AudioFormat     string `mapstructure:"audio_format"`
	CookieFile      string `mapstructure:"cookie_file"`
	PlaylistBackend string `mapstructure:"playlist_backend"`
}

// TranscodeConfig configures MP3 conversion (ffmpeg)
type TranscodeConfig struct {
	FFmpegBinary  string `mapstructure:"ffmpeg_binary"`
	FFprobeBinary string `mapstructure:"ffprobe_binary"`
	Bitrate       string `mapstructure:"bitrate"`
	Codec         string `mapstructure:"codec"`
}

// PublishConfig configures optional upload of finished MP3 files to S3
type PublishConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Prefix    string `mapstructure:"prefix"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
	LogsDir    string `mapstructure:"logs_dir"`    // categorised JSON logs
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8090,
		},
		Download: DownloadConfig{
			OutputDir: "downloads",
			ChunkSize: 64 * 1024,
			QueueSize: 16,
		},
		Source: SourceConfig{
			YTDLPBinary:     "yt-dlp",
			AudioFormat:     "bestaudio",
			PlaylistBackend: PlaylistBackendLibrary,
		},
		Transcode: TranscodeConfig{
			FFmpegBinary:  "ffmpeg",
			FFprobeBinary: "ffprobe",
			Bitrate:       "320k",
			Codec:         "libmp3lame",
		},
		Publish: PublishConfig{
			Enabled: false,
			Region:  "us-east-1",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
			LogsDir:    "$HOME/.ytmp3/logs",
		},
	}
}

// ExternalTools maps each program the pipeline shells out to onto the
// binary configured for it
func (c *Config) ExternalTools() map[string]string {
	return map[string]string{
		"yt-dlp":  c.Source.YTDLPBinary,
		"ffmpeg":  c.Transcode.FFmpegBinary,
		"ffprobe": c.Transcode.FFprobeBinary,
	}
}
