package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Valid log levels are: DEBUG, INFO, WARN, ERROR, FATAL
	LogLevel  string `required:"false" default:"info" desc:"set log level" split_words:"true"`
	LogFormat string `required:"false" default:"json" desc:"log format, json or console" split_words:"true"`

	// http parameters
	ListenAddress   string        `required:"false" default:":80" desc:"address the status api listens on" split_words:"true"`
	RateLimit       float64       `required:"false" default:"10" desc:"allowed requests per second, 0 disables rate limiting" split_words:"true"`
	RateBurst       int           `required:"false" default:"20" desc:"burst size of the rate limiter" split_words:"true"`
	ShutdownTimeout time.Duration `required:"false" default:"10s" desc:"time to wait for in-flight requests on shutdown" split_words:"true"`

	// sources
	LeaseFile  string        `required:"false" default:"/var/db/dhcpd/dhcpd.leases" desc:"the dhcp lease file to read" split_words:"true"`
	NDPCommand string        `required:"false" default:"ndp" desc:"command which prints the neighbor table" envconfig:"ndp_command"`
	NDPArgs    []string      `required:"false" default:"-an" desc:"arguments of the neighbor table command" envconfig:"ndp_args"`
	NDPTimeout time.Duration `required:"false" default:"5s" desc:"timeout of the neighbor table command" envconfig:"ndp_timeout"`

	// filters
	IgnoreMacs   []string `required:"false" desc:"mac addresses to ignore" split_words:"true"`
	AllowedCidrs []string `required:"false" default:"0.0.0.0/0" desc:"filters dhcp leases" split_words:"true"`
}

func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	switch c.LogFormat {
	case "json", "console", "":
	default:
		return fmt.Errorf("invalid log format %q: must be \"json\" or \"console\"", c.LogFormat)
	}
	if c.NDPCommand == "" {
		return fmt.Errorf("ndp command must not be empty")
	}
	if c.NDPTimeout <= 0 {
		return fmt.Errorf("ndp timeout must be positive, got %s", c.NDPTimeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %f", c.RateLimit)
	}
	_, err := c.Prefixes()
	return err
}

// Prefixes returns the parsed AllowedCidrs.
func (c *Config) Prefixes() ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, cidr := range c.AllowedCidrs {
		pfx, err := netip.ParsePrefix(cidr)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, pfx)
	}
	return prefixes, nil
}

// Macs returns IgnoreMacs in the lower case form both sources are keyed by.
func (c *Config) Macs() []string {
	macs := make([]string, 0, len(c.IgnoreMacs))
	for _, m := range c.IgnoreMacs {
		macs = append(macs, strings.ToLower(strings.TrimSpace(m)))
	}
	return macs
}

func (c Config) String() string {
	return fmt.Sprintf("loglevel:%s listen:%s leasefile:%s ndp:%s %s ndp timeout:%s ignored macs:%d allowed cidrs:%s",
		c.LogLevel, c.ListenAddress, c.LeaseFile, c.NDPCommand, strings.Join(c.NDPArgs, " "), c.NDPTimeout, len(c.IgnoreMacs), strings.Join(c.AllowedCidrs, ","))
}
