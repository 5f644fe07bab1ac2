package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"pack-manager/src/geo"
)

const (
	TokenEnvVar      = "BOT_TOKEN"
	TokenPathEnvVar  = "BOT_TOKEN_FILE"
	ConfigPathEnvVar = "PACK_MANAGER_CONFIG"
	EnvPathEnvVar    = "PACK_MANAGER_ENV"
	DefaultConfig    = "config.json"
	DefaultHotkey    = "Ctrl+Q"
	DefaultMapImage  = "game_map.png"
	DefaultMapScale  = 0.8
)

type LoadOptions struct {
	ConfigPathOverride string
	EnvPathOverride    string
	TokenFileOverride  string
}

type Config struct {
	Token             string
	TokenPath         string
	EnableFileLogging bool
	LogFile           string
	Hotkey            string
	ConfigPath        string

	Servers    []string
	Entities   []string
	Activities []string

	GuildName   string
	ChannelName string
	Mention     string

	MapImage string
	MapScale float64
	Extents  geo.Extents
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order for process settings:
	// 1) explicit overrides (flags)
	// 2) .env next to the executable, or the file named by PACK_MANAGER_ENV
	// 3) process environment
	// Map and Discord settings come from the JSON config file.
	envPath := resolveEnvPath(opts)
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	configPath := firstNonEmpty(opts.ConfigPathOverride, os.Getenv(ConfigPathEnvVar), DefaultConfig)
	v, err := readConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	tokenPath := firstNonEmpty(opts.TokenFileOverride, dotenvValues[TokenPathEnvVar], os.Getenv(TokenPathEnvVar))

	cfg := &Config{
		Token:             resolveToken(tokenPath, v),
		TokenPath:         tokenPath,
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		LogFile:           os.Getenv("LOG_FILE"),
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		ConfigPath:        configPath,

		Servers:    trimAll(v.GetStringSlice("server_values")),
		Entities:   trimAll(v.GetStringSlice("dino_values")),
		Activities: trimAll(v.GetStringSlice("actions")),

		GuildName:   strings.TrimSpace(v.GetString("discord_server_name")),
		ChannelName: strings.TrimSpace(v.GetString("discord_channel")),
		Mention:     strings.TrimSpace(v.GetString("mention")),

		MapImage: resolveRelative(configPath, v.GetString("map_image")),
		MapScale: v.GetFloat64("map_scale"),
		Extents: geo.Extents{
			North:    v.GetFloat64("extents.north"),
			South:    v.GetFloat64("extents.south"),
			East:     v.GetFloat64("extents.east"),
			West:     v.GetFloat64("extents.west"),
			SwapAxes: v.GetBool("extents.swap_axes"),
		},
	}
	return cfg, nil
}

// Validate reports settings without which the tool cannot run.
func (c *Config) Validate() error {
	var errs []error
	if c.Token == "" {
		errs = append(errs, fmt.Errorf("%s is required: set it in .env, point %s at a token file, or add it to %s", TokenEnvVar, TokenPathEnvVar, c.ConfigPath))
	}
	if c.GuildName == "" {
		errs = append(errs, errors.New("discord_server_name is required"))
	}
	if c.ChannelName == "" {
		errs = append(errs, errors.New("discord_channel is required"))
	}
	if c.MapScale <= 0 {
		errs = append(errs, fmt.Errorf("map_scale must be positive, got %v", c.MapScale))
	}
	return errors.Join(errs...)
}

func readConfigFile(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("map_image", DefaultMapImage)
	v.SetDefault("map_scale", DefaultMapScale)
	v.SetDefault("extents.north", geo.DefaultExtents.North)
	v.SetDefault("extents.south", geo.DefaultExtents.South)
	v.SetDefault("extents.east", geo.DefaultExtents.East)
	v.SetDefault("extents.west", geo.DefaultExtents.West)
	v.SetDefault("extents.swap_axes", geo.DefaultExtents.SwapAxes)

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return v, nil
}

func resolveEnvPath(opts LoadOptions) string {
	if p := strings.TrimSpace(opts.EnvPathOverride); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		return ""
	}

	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

// resolveToken prefers the token file, then the environment, then the
// config file.
func resolveToken(tokenPath string, v *viper.Viper) string {
	if tokenPath != "" {
		if data, err := os.ReadFile(tokenPath); err == nil {
			if fileToken := strings.TrimSpace(string(data)); fileToken != "" {
				return fileToken
			}
		}
	}

	if env := strings.TrimSpace(os.Getenv(TokenEnvVar)); env != "" {
		return env
	}

	return strings.TrimSpace(v.GetString(TokenEnvVar))
}

func resolveRelative(configPath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
