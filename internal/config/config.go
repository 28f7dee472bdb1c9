package config

import "time"

// SimulatorConfig is the root configuration for a simulation run.
type SimulatorConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Seed     int64          `yaml:"seed"` // 0 = time-based, non-reproducible
	Stocks   []StockConfig  `yaml:"stocks"`
	Traders  []TraderConfig `yaml:"traders"`
	Updater  UpdaterConfig  `yaml:"updater"`
	Trading  TradingConfig  `yaml:"trading"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
	Journal  JournalConfig  `yaml:"journal"`
	Status   StatusConfig   `yaml:"status"`
}

// InstanceConfig identifies this simulator run.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// StockConfig lists one stock at market setup.
type StockConfig struct {
	Symbol       string  `yaml:"symbol"`
	Name         string  `yaml:"name"`
	InitialPrice float64 `yaml:"initial_price"`
}

// TraderConfig seats one trader with starting capital.
type TraderConfig struct {
	Name        string  `yaml:"name"`
	InitialCash float64 `yaml:"initial_cash"`
}

// UpdaterConfig holds price updater settings.
type UpdaterConfig struct {
	Interval            time.Duration `yaml:"interval"`
	VolatilityInterval  time.Duration `yaml:"volatility_interval"`
	VolatilityDuration  time.Duration `yaml:"volatility_duration"`
	MaxChangePct        float64       `yaml:"max_change_pct"`
	HeadlineProbability float64       `yaml:"headline_probability"`
}

// TradingConfig bounds the randomized wait between trade decisions.
type TradingConfig struct {
	MinWait time.Duration `yaml:"min_wait"`
	MaxWait time.Duration `yaml:"max_wait"`
}

// MonitorConfig holds interactive monitor settings.
type MonitorConfig struct {
	// AutoStopTimeout closes the market after this much command inactivity.
	AutoStopTimeout time.Duration `yaml:"auto_stop_timeout"`
}

// ShutdownConfig bounds how long closing the session waits for agents.
type ShutdownConfig struct {
	TraderTimeout  time.Duration `yaml:"trader_timeout"`
	UpdaterTimeout time.Duration `yaml:"updater_timeout"`
}

// JournalConfig holds the optional trade journal database settings.
type JournalConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Database      DBConfig      `yaml:"database"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DBConfig holds a PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// StatusConfig holds the optional status HTTP endpoint settings.
type StatusConfig struct {
	Port int `yaml:"port"` // 0 disables the endpoint
}
