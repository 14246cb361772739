package ssotica

import (
	"time"

	"ssotica-backend/internal/components/telemetry"
	"ssotica-backend/pkg/configutil"
)

// Config is the `ssotica` block of config.json5.
type Config struct {
	BaseUrl           string  `json:"base_url"`
	Tenant            string  `json:"tenant"`
	Username          string  `json:"username"`
	Password          string  `json:"password"`
	TokenSource       string  `json:"token_source"`
	LoginField        string  `json:"login_field"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
}

// ApplyEnv lets SSOTICA_USER and SSOTICA_PASS override the credentials.
func (c *Config) ApplyEnv() {
	configutil.LookupEnv(&c.Username, "SSOTICA_USER")
	configutil.LookupEnv(&c.Password, "SSOTICA_PASS")
}

// Options converts the config into client options, output may be nil.
func (c Config) Options(output telemetry.MessageOutput) (ClientOptions, error) {
	source, err := ParseTokenSource(c.TokenSource)
	if err != nil {
		return ClientOptions{}, newError(KindConfiguration, err, "token_source")
	}
	if c.TimeoutSeconds < 0 {
		return ClientOptions{}, newError(KindConfiguration, nil, "timeout_seconds must not be negative")
	}
	return ClientOptions{
		BaseUrl:           c.BaseUrl,
		Tenant:            c.Tenant,
		Username:          c.Username,
		Password:          c.Password,
		TokenSource:       source,
		LoginField:        c.LoginField,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.RequestsPerSecond,
		CloudflareBypass:  c.CloudflareBypass,
		Output:            output,
	}, nil
}
