package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *SimulatorConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if len(c.Stocks) == 0 {
		return errors.New("at least one stock is required")
	}
	seen := make(map[string]bool, len(c.Stocks))
	for i, s := range c.Stocks {
		if s.Symbol == "" {
			return fmt.Errorf("stocks[%d].symbol is required", i)
		}
		if seen[s.Symbol] {
			return fmt.Errorf("stocks[%d].symbol %q is listed twice", i, s.Symbol)
		}
		seen[s.Symbol] = true
		if s.InitialPrice <= 0 {
			return fmt.Errorf("stocks[%d].initial_price must be > 0, got %v", i, s.InitialPrice)
		}
	}

	if len(c.Traders) == 0 {
		return errors.New("at least one trader is required")
	}
	for i, tr := range c.Traders {
		if tr.Name == "" {
			return fmt.Errorf("traders[%d].name is required", i)
		}
		if tr.InitialCash < 0 {
			return fmt.Errorf("traders[%d].initial_cash must be >= 0, got %v", i, tr.InitialCash)
		}
	}

	if c.Updater.MaxChangePct <= 0 {
		return fmt.Errorf("updater.max_change_pct must be > 0, got %v", c.Updater.MaxChangePct)
	}

	if c.Trading.MinWait <= 0 {
		return errors.New("trading.min_wait must be > 0")
	}
	if c.Trading.MaxWait < c.Trading.MinWait {
		return fmt.Errorf("trading.max_wait (%v) cannot be less than min_wait (%v)", c.Trading.MaxWait, c.Trading.MinWait)
	}

	if c.Journal.Enabled {
		if c.Journal.BatchSize < 1 {
			return errors.New("journal.batch_size must be >= 1")
		}
		if err := c.Journal.Database.validate("journal.database"); err != nil {
			return err
		}
	}

	if c.Status.Port < 0 || c.Status.Port > 65535 {
		return fmt.Errorf("status.port must be between 0 and 65535, got %d", c.Status.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
