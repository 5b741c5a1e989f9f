package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Cron       CronConfig       `mapstructure:"cron"`
	Auction    AuctionConfig    `mapstructure:"auction"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Import     ImportConfig     `mapstructure:"import"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	DeviceSweep      string        `mapstructure:"device_sweep"`
	DeviceStaleAfter time.Duration `mapstructure:"device_stale_after"`
}

type AuctionConfig struct {
	Franchises  []string      `mapstructure:"franchises"`
	TeamPurse   float64       `mapstructure:"team_purse"`
	StartWindow time.Duration `mapstructure:"start_window"`
	BidWindow   time.Duration `mapstructure:"bid_window"`
	DeviceLimit int           `mapstructure:"device_limit"`
}

type EvaluationConfig struct {
	SquadSize          int     `mapstructure:"squad_size"`
	MinRosterSize      int     `mapstructure:"min_roster_size"`
	MissingSlotPenalty float64 `mapstructure:"missing_slot_penalty"`
	MissingXIPenalty   float64 `mapstructure:"missing_xi_penalty"`
	RosterShortPenalty float64 `mapstructure:"roster_short_penalty"`
	OverspendPenalty   float64 `mapstructure:"overspend_penalty"`
}

type ImportConfig struct {
	CSVPath string `mapstructure:"csv_path"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.device_sweep", "@every 10m")
	v.SetDefault("cron.device_stale_after", "12h")
	v.SetDefault("auction.franchises", []string{
		"MI", "CSK", "RCB", "KKR", "DC", "SRH", "RR", "PBKS", "GT", "LSG",
	})
	v.SetDefault("auction.team_purse", 90)
	v.SetDefault("auction.start_window", "30s")
	v.SetDefault("auction.bid_window", "15s")
	v.SetDefault("auction.device_limit", 13)
	v.SetDefault("evaluation.squad_size", 11)
	v.SetDefault("evaluation.min_roster_size", 18)
	v.SetDefault("evaluation.missing_slot_penalty", 10)
	v.SetDefault("evaluation.missing_xi_penalty", 8)
	v.SetDefault("evaluation.roster_short_penalty", 2)
	v.SetDefault("evaluation.overspend_penalty", 5)
	v.SetDefault("import.csv_path", "data/players.csv")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
