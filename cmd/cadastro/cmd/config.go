package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration parses TOML strings like "5s"
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the cadastro CLI configuration
type Config struct {
	// APIURL is the person API, either the backend or the BFF
	APIURL     string   `toml:"api_url"`
	ViaCEPURL  string   `toml:"viacep_url"`
	Timeout    Duration `toml:"timeout"`
	ResetDelay Duration `toml:"reset_delay"`
	LogLevel   string   `toml:"log_level"`
}

// DefaultConfig returns the configuration used without a config file
func DefaultConfig() Config {
	return Config{
		APIURL:     "http://localhost:8080",
		ViaCEPURL:  "https://viacep.com.br",
		Timeout:    Duration{15 * time.Second},
		ResetDelay: Duration{3 * time.Second},
	}
}

// LoadConfig reads path over the defaults. An empty path tries
// ./cadastro.toml and ~/.config/personia/cadastro.toml and falls back to the
// defaults when neither exists.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		for _, p := range defaultConfigPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
		if path == "" {
			return cfg, nil
		}
	}

	path = os.ExpandEnv(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, fmt.Errorf("config file not found: %s", path)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.ViaCEPURL = strings.TrimRight(cfg.ViaCEPURL, "/")
	return cfg, nil
}

func defaultConfigPaths() []string {
	paths := []string{"./cadastro.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "personia", "cadastro.toml"))
	}
	return paths
}
