package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID         = "tradefloor"
	DefaultUpdateInterval     = 10 * time.Second
	DefaultVolatilityInterval = 2 * time.Second
	DefaultVolatilityDuration = 15 * time.Second
	DefaultMaxChangePct       = 5.0
	DefaultHeadlineProb       = 0.1
	DefaultMinWait            = 3 * time.Second
	DefaultMaxWait            = 8 * time.Second
	DefaultAutoStopTimeout    = 30 * time.Second
	DefaultTraderTimeout      = 5 * time.Second
	DefaultUpdaterTimeout     = 2 * time.Second
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 4
	DefaultMinConns           = 1
	DefaultBatchSize          = 200
	DefaultFlushInterval      = 1 * time.Second
)

// defaultStocks is the stock roster used when the config lists none.
func defaultStocks() []StockConfig {
	return []StockConfig{
		{Symbol: "AAPL", Name: "Apple Inc.", InitialPrice: 150.00},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", InitialPrice: 2500.00},
		{Symbol: "MSFT", Name: "Microsoft Corporation", InitialPrice: 300.00},
	}
}

// defaultTraders is the trader roster used when the config lists none.
func defaultTraders() []TraderConfig {
	return []TraderConfig{
		{Name: "Alice", InitialCash: 10000.0},
		{Name: "Bob", InitialCash: 15000.0},
		{Name: "Charlie", InitialCash: 8000.0},
		{Name: "Diana", InitialCash: 20000.0},
		{Name: "Eve", InitialCash: 12000.0},
	}
}

func (c *SimulatorConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}

	if len(c.Stocks) == 0 {
		c.Stocks = defaultStocks()
	}
	if len(c.Traders) == 0 {
		c.Traders = defaultTraders()
	}

	// Updater defaults
	if c.Updater.Interval == 0 {
		c.Updater.Interval = DefaultUpdateInterval
	}
	if c.Updater.VolatilityInterval == 0 {
		c.Updater.VolatilityInterval = DefaultVolatilityInterval
	}
	if c.Updater.VolatilityDuration == 0 {
		c.Updater.VolatilityDuration = DefaultVolatilityDuration
	}
	if c.Updater.MaxChangePct == 0 {
		c.Updater.MaxChangePct = DefaultMaxChangePct
	}
	if c.Updater.HeadlineProbability == 0 {
		c.Updater.HeadlineProbability = DefaultHeadlineProb
	}

	// Trading defaults
	if c.Trading.MinWait == 0 {
		c.Trading.MinWait = DefaultMinWait
	}
	if c.Trading.MaxWait == 0 {
		c.Trading.MaxWait = DefaultMaxWait
	}

	// Monitor and shutdown defaults
	if c.Monitor.AutoStopTimeout == 0 {
		c.Monitor.AutoStopTimeout = DefaultAutoStopTimeout
	}
	if c.Shutdown.TraderTimeout == 0 {
		c.Shutdown.TraderTimeout = DefaultTraderTimeout
	}
	if c.Shutdown.UpdaterTimeout == 0 {
		c.Shutdown.UpdaterTimeout = DefaultUpdaterTimeout
	}

	// Journal defaults
	if c.Journal.BatchSize == 0 {
		c.Journal.BatchSize = DefaultBatchSize
	}
	if c.Journal.FlushInterval == 0 {
		c.Journal.FlushInterval = DefaultFlushInterval
	}
	if c.Journal.Enabled {
		applyDBDefaults(&c.Journal.Database)
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

// Default returns the built-in configuration with every default applied.
func Default() *SimulatorConfig {
	cfg := &SimulatorConfig{}
	cfg.applyDefaults()
	return cfg
}
