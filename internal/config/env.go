package config

import (
	"github.com/caarlos0/env/v11"

	"github.com/ngclient/ngutils/internal/errors"
)

// envOverrides holds raw environment values. Unset variables leave the
// pointers nil so that file values survive.
type envOverrides struct {
	Addr           *string  `env:"NGUTILS_ADDR"`
	AllowedOrigins []string `env:"NGUTILS_ALLOWED_ORIGINS" envSeparator:","`
	LogLevel       *string  `env:"NGUTILS_LOG_LEVEL"`
	LogFormat      *string  `env:"NGUTILS_LOG_FORMAT"`
	Backend        *string  `env:"NGUTILS_SNAPSHOT_BACKEND"`
	S3Bucket       *string  `env:"NGUTILS_S3_BUCKET"`
	S3Prefix       *string  `env:"NGUTILS_S3_PREFIX"`
	S3Region       *string  `env:"NGUTILS_S3_REGION"`
	S3Endpoint     *string  `env:"NGUTILS_S3_ENDPOINT"`
	S3PathStyle    *bool    `env:"NGUTILS_S3_PATH_STYLE"`
	Metrics        *bool    `env:"NGUTILS_METRICS"`
	Tracing        *bool    `env:"NGUTILS_TRACING"`
}

// ApplyEnv overrides configuration values from NGUTILS_* environment variables.
func (c *Config) ApplyEnv() error {
	var e envOverrides
	if err := env.Parse(&e); err != nil {
		return errors.New("N031").WithDetail("environment").Wrap(err)
	}

	setString(&c.Server.Addr, e.Addr)
	if len(e.AllowedOrigins) > 0 {
		c.Server.AllowedOrigins = e.AllowedOrigins
	}
	setString(&c.Log.Level, e.LogLevel)
	setString(&c.Log.Format, e.LogFormat)
	setString(&c.Snapshot.Backend, e.Backend)
	setString(&c.Snapshot.S3.Bucket, e.S3Bucket)
	setString(&c.Snapshot.S3.Prefix, e.S3Prefix)
	setString(&c.Snapshot.S3.Region, e.S3Region)
	setString(&c.Snapshot.S3.Endpoint, e.S3Endpoint)
	setBool(&c.Snapshot.S3.UsePathStyle, e.S3PathStyle)
	setBool(&c.Metrics.Enabled, e.Metrics)
	setBool(&c.Tracing.Enabled, e.Tracing)

	c.applyDefaults()
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
