package client

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"ndvpal/pkg/io"
	otelCfg "ndvpal/pkg/logging/otel/config"
	"ndvpal/pkg/proto"
	"ndvpal/pkg/sec"
	"ndvpal/pkg/util"
)

type Duration = util.Duration

type Config struct {
	Server         io.ServiceEndpoint
	Appname        string
	PalVersion     int
	SessionID      string
	UserID         string
	ServerCodePage string
	ConnectTimeout Duration
	ReadTimeout    Duration
	WriteTimeout   Duration
	Otel           otelCfg.Config
	// Sec is used to build the TLS configuration when Server.SSLEnabled is
	// set and no WithTLSConfig option is given.
	Sec sec.Config
}

var defaultConfig = Config{
	PalVersion:     proto.CurrentVersion,
	ConnectTimeout: Duration{Duration: 1 * time.Second},
	ReadTimeout:    Duration{Duration: 30 * time.Second},
	WriteTimeout:   Duration{Duration: 5 * time.Second},
}

func (c *Config) SetDefault() {
	*c = defaultConfig
}

// LoadConfig reads a TOML file on top of the defaults.
func LoadConfig(file string) (*Config, error) {
	var c Config
	c.SetDefault()
	if _, err := toml.DecodeFile(file, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if len(c.Appname) == 0 {
		return fmt.Errorf("Config.Appname not specified.")
	}
	if c.PalVersion <= 0 || c.PalVersion > 99 {
		return fmt.Errorf("Config.PalVersion %d out of range", c.PalVersion)
	}
	if c.ReadTimeout.Duration < 0 || c.WriteTimeout.Duration < 0 || c.ConnectTimeout.Duration < 0 {
		return fmt.Errorf("negative timeout in config")
	}
	return nil
}
