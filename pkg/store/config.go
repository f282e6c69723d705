// Package store loads client configuration for the daybook engine.
package store

import (
	"log"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/daybook/pkg/timeutil"
)

// Config exposes the client settings the engine needs.
type Config interface {
	BaseURL() string
	Token() string
	WeekStart() timeutil.WeekStart
	SnapshotPath() string
}

// LoadConfig reads .daybook.yaml (working directory, home, or
// DAYBOOK_CONFIG_PATH) with DAYBOOK_* environment overrides.
func LoadConfig() (Config, error) {
	viper.SetDefault("base_url", "http://localhost:8484")
	viper.SetDefault("week_start", "sunday")
	viper.SetDefault("snapshot_path", "~/.daybook/snapshots")
	viper.SetConfigName(".daybook") // .yaml is implicit
	viper.SetEnvPrefix("DAYBOOK")
	viper.AutomaticEnv()

	if override := os.Getenv("DAYBOOK_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}
	viper.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("error reading config file: %v", err)
			return nil, err
		}
	}

	ws, err := timeutil.ParseWeekStart(viper.GetString("week_start"))
	if err != nil {
		log.Printf("config: %v, falling back to sunday", err)
		ws = timeutil.WeekStartSunday
	}

	snapshots := viper.GetString("snapshot_path")
	if expanded, err := homedir.Expand(snapshots); err == nil {
		snapshots = expanded
	}

	return &fileConfig{
		URL:       viper.GetString("base_url"),
		AuthToken: viper.GetString("token"),
		Week:      ws,
		Snapshots: snapshots,
	}, nil
}

type fileConfig struct {
	URL       string
	AuthToken string
	Week      timeutil.WeekStart
	Snapshots string
}

func (f *fileConfig) BaseURL() string               { return f.URL }
func (f *fileConfig) Token() string                 { return f.AuthToken }
func (f *fileConfig) WeekStart() timeutil.WeekStart { return f.Week }
func (f *fileConfig) SnapshotPath() string          { return f.Snapshots }
