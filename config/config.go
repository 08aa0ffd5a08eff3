package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	PlatformDiscord  = "discord"
	PlatformTelegram = "telegram"
)

const (
	MiB = 1 << 20

	DefaultConfigPath            = "config.toml"
	DefaultHardCapBytes          = 8 * MiB
	DefaultSoftCapBytes          = 50 * MiB
	DefaultFFmpegPath            = "ffmpeg"
	DefaultTranscodeTimeout      = 60 * time.Second
	DefaultTranscodeFPS          = 15
	DefaultMaxTranscodes         = 2
	DefaultMaxConcurrentCommands = 16
	DefaultCommandRate           = 0.5
	DefaultCommandBurst          = 3
	DefaultSessionDir            = "data"
	DefaultPresence              = "summoning Luke"
)

var ErrMissing = errors.New("missing required setting")

type Config struct {
	Platform string `toml:"platform"`

	Discord  DiscordConfig  `toml:"discord"`
	Telegram TelegramConfig `toml:"telegram"`
	Drive    DriveConfig    `toml:"drive"`
	Delivery DeliveryConfig `toml:"delivery"`
	AutoPost AutoPostConfig `toml:"autopost"`
	Log      LogConfig      `toml:"log"`

	OperatorChannelID     string  `toml:"operator_channel_id"`
	OwnerID               string  `toml:"owner_id"`
	Presence              string  `toml:"presence"`
	CommandRate           float64 `toml:"command_rate"`
	CommandBurst          int     `toml:"command_burst"`
	MaxConcurrentCommands int     `toml:"max_concurrent_commands"`
	MetricsAddr           string  `toml:"metrics_addr"`
	TempDir               string  `toml:"temp_dir"`
}

type DiscordConfig struct {
	Token string `toml:"token"`
}

type TelegramConfig struct {
	BotToken   string `toml:"bot_token"`
	AppID      int    `toml:"app_id"`
	AppHash    string `toml:"app_hash"`
	SessionDir string `toml:"session_dir"`
}

type DriveConfig struct {
	FolderID            string `toml:"folder_id"`
	ServiceAccountFile  string `toml:"service_account_file"`
	ServiceAccountJSON  string `toml:"service_account_json"`
	DownloadURLTemplate string `toml:"download_url_template"`
	PreviewURLTemplate  string `toml:"preview_url_template"`
}

type DeliveryConfig struct {
	HardCapBytes       int64    `toml:"hard_cap_bytes"`
	SoftCapBytes       int64    `toml:"soft_cap_bytes"`
	FFmpegPath         string   `toml:"ffmpeg_path"`
	TranscodeTimeout   Duration `toml:"transcode_timeout"`
	TranscodeFPS       int      `toml:"transcode_fps"`
	MaxTranscodes      int      `toml:"max_transcodes"`
	GIFFallbackPreview bool     `toml:"gif_fallback_preview"`
}

type AutoPostConfig struct {
	Interval       Duration `toml:"interval"`
	ChannelID      string   `toml:"channel_id"`
	SpicyInterval  Duration `toml:"spicy_interval"`
	SpicyChannelID string   `toml:"spicy_channel_id"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Debug  bool   `toml:"debug"`
	Quiet  bool   `toml:"quiet"`
}

// Duration decodes TOML strings like "6h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Default() Config {
	return Config{
		Platform: PlatformDiscord,
		Telegram: TelegramConfig{
			SessionDir: DefaultSessionDir,
		},
		Drive: DriveConfig{
			DownloadURLTemplate: "https://drive.google.com/uc?export=download&id=%s",
			PreviewURLTemplate:  "https://drive.google.com/uc?export=view&id=%s",
		},
		Delivery: DeliveryConfig{
			HardCapBytes:     DefaultHardCapBytes,
			SoftCapBytes:     DefaultSoftCapBytes,
			FFmpegPath:       DefaultFFmpegPath,
			TranscodeTimeout: Duration{DefaultTranscodeTimeout},
			TranscodeFPS:     DefaultTranscodeFPS,
			MaxTranscodes:    DefaultMaxTranscodes,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Presence:              DefaultPresence,
		CommandRate:           DefaultCommandRate,
		CommandBurst:          DefaultCommandBurst,
		MaxConcurrentCommands: DefaultMaxConcurrentCommands,
	}
}

// Load applies defaults, then the TOML file at path (a missing file is not an
// error), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			*dst = strings.EqualFold(strings.TrimSpace(v), "true") || strings.TrimSpace(v) == "1"
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	int64v := func(key string, dst *int64) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *Duration) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}

	str("PLATFORM", &cfg.Platform)
	str("DISCORD_TOKEN", &cfg.Discord.Token)
	str("TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken)
	integer("TELEGRAM_APP_ID", &cfg.Telegram.AppID)
	str("TELEGRAM_APP_HASH", &cfg.Telegram.AppHash)
	str("TELEGRAM_SESSION_DIR", &cfg.Telegram.SessionDir)

	str("DRIVE_FOLDER_ID", &cfg.Drive.FolderID)
	str("GOOGLE_SERVICE_ACCOUNT_FILE", &cfg.Drive.ServiceAccountFile)
	str("GOOGLE_SERVICE_ACCOUNT_JSON", &cfg.Drive.ServiceAccountJSON)

	int64v("HARD_CAP_BYTES", &cfg.Delivery.HardCapBytes)
	int64v("SOFT_CAP_BYTES", &cfg.Delivery.SoftCapBytes)
	str("FFMPEG_PATH", &cfg.Delivery.FFmpegPath)
	duration("TRANSCODE_TIMEOUT", &cfg.Delivery.TranscodeTimeout)
	integer("TRANSCODE_FPS", &cfg.Delivery.TranscodeFPS)
	integer("MAX_TRANSCODES", &cfg.Delivery.MaxTranscodes)
	boolean("GIF_FALLBACK_PREVIEW", &cfg.Delivery.GIFFallbackPreview)

	duration("AUTOPOST_INTERVAL", &cfg.AutoPost.Interval)
	str("AUTOPOST_CHANNEL_ID", &cfg.AutoPost.ChannelID)
	duration("SPICY_AUTOPOST_INTERVAL", &cfg.AutoPost.SpicyInterval)
	str("SPICY_AUTOPOST_CHANNEL_ID", &cfg.AutoPost.SpicyChannelID)

	str("OPERATOR_CHANNEL_ID", &cfg.OperatorChannelID)
	str("OWNER_ID", &cfg.OwnerID)
	str("PRESENCE", &cfg.Presence)
	float("COMMAND_RATE", &cfg.CommandRate)
	integer("COMMAND_BURST", &cfg.CommandBurst)
	integer("MAX_CONCURRENT_COMMANDS", &cfg.MaxConcurrentCommands)
	str("METRICS_ADDR", &cfg.MetricsAddr)
	str("TEMP_DIR", &cfg.TempDir)

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	boolean("DEBUG", &cfg.Log.Debug)
	boolean("QUIET", &cfg.Log.Quiet)

	cfg.Platform = strings.ToLower(cfg.Platform)
	return errors.Join(errs...)
}

// Validate reports every configuration error at once. Any error is fatal at
// startup.
func (c *Config) Validate() error {
	var errs []error
	missing := func(name string) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissing, name))
	}

	switch c.Platform {
	case PlatformDiscord:
		if c.Discord.Token == "" {
			missing("DISCORD_TOKEN")
		}
	case PlatformTelegram:
		if c.Telegram.BotToken == "" {
			missing("TELEGRAM_BOT_TOKEN")
		}
		if c.Telegram.AppID == 0 {
			missing("TELEGRAM_APP_ID")
		}
		if c.Telegram.AppHash == "" {
			missing("TELEGRAM_APP_HASH")
		}
	default:
		errs = append(errs, fmt.Errorf("unknown platform %q", c.Platform))
	}

	errs = append(errs, c.ValidateDrive())

	d := c.Delivery
	if d.HardCapBytes <= 0 || d.SoftCapBytes <= 0 {
		errs = append(errs, fmt.Errorf("size caps must be positive (hard=%d soft=%d)", d.HardCapBytes, d.SoftCapBytes))
	} else if d.HardCapBytes > d.SoftCapBytes {
		errs = append(errs, fmt.Errorf("hard cap %d exceeds soft cap %d", d.HardCapBytes, d.SoftCapBytes))
	}
	if d.TranscodeFPS <= 0 {
		errs = append(errs, fmt.Errorf("TRANSCODE_FPS must be positive"))
	}
	if d.TranscodeTimeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("TRANSCODE_TIMEOUT must be positive"))
	}

	a := c.AutoPost
	if a.Interval.Duration < 0 || a.SpicyInterval.Duration < 0 {
		errs = append(errs, fmt.Errorf("autopost intervals must not be negative"))
	}
	if a.Interval.Duration > 0 && a.ChannelID == "" {
		missing("AUTOPOST_CHANNEL_ID")
	}
	if a.SpicyInterval.Duration > 0 && a.SpicyChannelID == "" {
		missing("SPICY_AUTOPOST_CHANNEL_ID")
	}

	return errors.Join(errs...)
}

// ValidateDrive checks only the storage settings, for tools that never touch
// the chat platform.
func (c *Config) ValidateDrive() error {
	var errs []error
	if c.Drive.FolderID == "" {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissing, "DRIVE_FOLDER_ID"))
	}
	if c.Drive.ServiceAccountFile == "" && c.Drive.ServiceAccountJSON == "" {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissing, "GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON"))
	}
	return errors.Join(errs...)
}

// LogLevel folds the DEBUG and QUIET toggles into the configured level.
func (c *Config) LogLevel() string {
	switch {
	case c.Log.Debug:
		return "debug"
	case c.Log.Quiet:
		return "warn"
	default:
		return c.Log.Level
	}
}
