package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pack-manager/src/geo"
)

const sampleConfig = `{
  "discord_server_name": "Pack",
  "discord_channel": "dino-updates",
  "mention": "@here",
  "server_values": ["Island 1", " Island 2 ", ""],
  "dino_values": ["Rex", "Giga"],
  "actions": ["Taming", "Breeding"],
  "map_image": "maps/island.png",
  "map_scale": 0.5,
  "extents": {"north": 10, "south": 20, "east": 30, "west": 40, "swap_axes": false}
}`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{TokenEnvVar, TokenPathEnvVar, ConfigPathEnvVar, EnvPathEnvVar, "HOTKEY", "ENABLE_FILE_LOGGING", "LOG_FILE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.json", sampleConfig)

	t.Setenv(TokenEnvVar, "env-token")
	t.Setenv("ENABLE_FILE_LOGGING", "true")
	t.Setenv("HOTKEY", "Ctrl+Shift+T")

	cfg, err := LoadWithOptions(LoadOptions{ConfigPathOverride: cfgPath})
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Token)
	assert.True(t, cfg.EnableFileLogging)
	assert.Equal(t, "Ctrl+Shift+T", cfg.Hotkey)
	assert.Equal(t, "Pack", cfg.GuildName)
	assert.Equal(t, "dino-updates", cfg.ChannelName)
	assert.Equal(t, "@here", cfg.Mention)
	assert.Equal(t, []string{"Island 1", "Island 2"}, cfg.Servers)
	assert.Equal(t, []string{"Rex", "Giga"}, cfg.Entities)
	assert.Equal(t, []string{"Taming", "Breeding"}, cfg.Activities)
	assert.Equal(t, filepath.Join(dir, "maps", "island.png"), cfg.MapImage)
	assert.Equal(t, 0.5, cfg.MapScale)
	assert.Equal(t, geo.Extents{North: 10, South: 20, East: 30, West: 40}, cfg.Extents)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.json", `{"BOT_TOKEN": "json-token", "discord_server_name": "Pack", "discord_channel": "c"}`)

	cfg, err := LoadWithOptions(LoadOptions{ConfigPathOverride: cfgPath})
	require.NoError(t, err)

	assert.Equal(t, "json-token", cfg.Token)
	assert.Equal(t, DefaultHotkey, cfg.Hotkey)
	assert.Equal(t, DefaultMapScale, cfg.MapScale)
	assert.Equal(t, filepath.Join(dir, DefaultMapImage), cfg.MapImage)
	assert.Equal(t, geo.DefaultExtents, cfg.Extents)
	assert.Empty(t, cfg.Mention)
}

func TestTokenFileTakesPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.json", `{"BOT_TOKEN": "json-token"}`)
	tokenPath := writeFile(t, dir, "token.txt", "  file-token\n")
	t.Setenv(TokenEnvVar, "env-token")

	cfg, err := LoadWithOptions(LoadOptions{ConfigPathOverride: cfgPath, TokenFileOverride: tokenPath})
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Token)
	assert.Equal(t, tokenPath, cfg.TokenPath)
}

func TestDotenvOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.json", `{}`)
	tokenPath := writeFile(t, dir, "token.txt", "dotenv-file-token")
	envPath := writeFile(t, dir, "custom.env", "BOT_TOKEN_FILE="+tokenPath+"\nHOTKEY=Alt+M\n")

	cfg, err := LoadWithOptions(LoadOptions{ConfigPathOverride: cfgPath, EnvPathOverride: envPath})
	require.NoError(t, err)
	assert.Equal(t, "dotenv-file-token", cfg.Token)
	assert.Equal(t, "Alt+M", cfg.Hotkey)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadWithOptions(LoadOptions{ConfigPathOverride: filepath.Join(t.TempDir(), "absent.json")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{MapScale: 0, ConfigPath: "config.json"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), TokenEnvVar)
	assert.Contains(t, err.Error(), "discord_server_name")
	assert.Contains(t, err.Error(), "discord_channel")
	assert.Contains(t, err.Error(), "map_scale")
}
