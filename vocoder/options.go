package vocoder

import (
	"time"

	"github.com/rs/zerolog"
)

// Config holds the device configuration.
type Config struct {
	// Logger receives exchange diagnostics. Defaults to a no-op logger.
	Logger zerolog.Logger

	// ExchangeTimeout bounds the blocking read of one response frame.
	// Applied through the stream's SetReadTimeout when it has one;
	// otherwise the stream's own timeout governs.
	ExchangeTimeout time.Duration

	// WriteDelay is an optional settle delay between writing a command
	// and reading its response.
	WriteDelay time.Duration
}

func defaultConfig() Config {
	return Config{
		Logger:          zerolog.Nop(),
		ExchangeTimeout: 5 * time.Second,
	}
}

// Option is a functional option for configuring the Device.
type Option func(*Config)

// WithLogger sets the logger for exchange diagnostics.
//
// Example:
//
//	dev := vocoder.New(port, vocoder.WithLogger(log.With().Str("component", "dv3k").Logger()))
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithExchangeTimeout bounds the blocking read of each response frame.
//
// Example:
//
//	dev := vocoder.New(port, vocoder.WithExchangeTimeout(2*time.Second))
func WithExchangeTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ExchangeTimeout = timeout
		}
	}
}

// WithWriteDelay adds a settle delay between the command write and the
// response read.
func WithWriteDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.WriteDelay = delay
		}
	}
}
