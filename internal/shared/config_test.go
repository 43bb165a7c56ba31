package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./spotiup.db" {
			t.Errorf("expected database path ./spotiup.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.ClientID != "your_spotify_client_id" {
			t.Errorf("expected spotify client_id your_spotify_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Storage.HistoryLimit != 10 || config.Storage.UpdateLogLimit != 100 {
			t.Errorf("expected storage limits 10/100, got %d/%d", config.Storage.HistoryLimit, config.Storage.UpdateLogLimit)
		}

		if config.Sync.PageDelayMS != 100 {
			t.Errorf("expected page delay 100ms, got %d", config.Sync.PageDelayMS)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080

[storage]
dir = "/custom/data"
history_limit = 5
update_log_limit = 50

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:8080/callback"

[sync]
page_delay_ms = 250
exclude_spotify_owned = true
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Storage.Dir != "/custom/data" || config.Storage.HistoryLimit != 5 {
			t.Errorf("storage config = %+v", config.Storage)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if !config.Sync.ExcludeSpotifyOwned || config.Sync.PageDelayMS != 250 {
			t.Errorf("sync config = %+v", config.Sync)
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		config.Credentials.Spotify.AccessToken = "access"
		config.Credentials.Spotify.RefreshToken = "refresh"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Credentials.Spotify.AccessToken != "access" {
			t.Errorf("token not persisted, got %q", loaded.Credentials.Spotify.AccessToken)
		}
	})
}

func TestSpotifyConfigToken(t *testing.T) {
	t.Run("no stored token", func(t *testing.T) {
		c := SpotifyConfig{}
		if c.Token() != nil {
			t.Error("empty credentials should yield a nil token")
		}
	})

	t.Run("update and reconstruct", func(t *testing.T) {
		c := SpotifyConfig{RefreshToken: "old_refresh"}
		expiry := time.Now().Add(time.Hour).UTC()

		err := c.Update(&oauth2.Token{AccessToken: "new_access", Expiry: expiry})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		// A refresh response without a refresh token keeps the stored one.
		if c.RefreshToken != "old_refresh" {
			t.Errorf("refresh token = %q", c.RefreshToken)
		}

		token := c.Token()
		if token == nil || token.AccessToken != "new_access" || !token.Expiry.Equal(expiry) {
			t.Errorf("reconstructed token = %+v", token)
		}
		if token.TokenType != "Bearer" {
			t.Errorf("token type = %q", token.TokenType)
		}
	})

	t.Run("empty token rejected", func(t *testing.T) {
		c := SpotifyConfig{}
		if err := c.Update(&oauth2.Token{}); err == nil {
			t.Error("empty access token should be rejected")
		}
	})
}
