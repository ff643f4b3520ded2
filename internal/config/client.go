package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/courseselect/internal/protocol"
	"github.com/danmuck/courseselect/internal/protocol/session"
)

// ClientConfig is everything coursectl needs besides the catalog.
type ClientConfig struct {
	Origin      string
	Dialect     protocol.Dialect
	CatalogPath string
	// StatusAddr is the listen address of the local status API; empty
	// disables it.
	StatusAddr  string
	CorsOrigins []string
	Session     session.Config
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Origin:      "http://localhost:8080",
		Dialect:     protocol.DialectCurrent,
		CatalogPath: "catalog.toml",
		StatusAddr:  "127.0.0.1:9180",
		Session:     session.DefaultConfig(),
	}
}

type clientFile struct {
	Origin             string      `toml:"origin"`
	Dialect            string      `toml:"dialect"`
	Catalog            string      `toml:"catalog"`
	StatusAddr         string      `toml:"status_addr"`
	CorsOrigins        []string    `toml:"cors_origins"`
	ConnectTimeout     string      `toml:"connect_timeout"`
	WriteTimeout       string      `toml:"write_timeout"`
	MaxConnectAttempts int         `toml:"max_connect_attempts"`
	SecurityMode       string      `toml:"security_mode"`
	TLS                tlsFile     `toml:"tls"`
	Backoff            backoffFile `toml:"backoff"`
}

type tlsFile struct {
	CAFile             string `toml:"ca_file"`
	ServerName         string `toml:"server_name"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
}

type backoffFile struct {
	Initial    string  `toml:"initial"`
	Multiplier float64 `toml:"multiplier"`
	Max        string  `toml:"max"`
	Jitter     bool    `toml:"jitter"`
}

// LoadClientConfig applies the keys present in path on top of
// DefaultClientConfig. A relative catalog path is resolved against the
// directory of the config file.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	var raw clientFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("load client config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return ClientConfig{}, fmt.Errorf("client config %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("origin") {
		cfg.Origin = strings.TrimSpace(raw.Origin)
	}
	if meta.IsDefined("dialect") {
		cfg.Dialect = protocol.Dialect(strings.ToLower(strings.TrimSpace(raw.Dialect)))
	}
	if meta.IsDefined("catalog") {
		cfg.CatalogPath = strings.TrimSpace(raw.Catalog)
	}
	if meta.IsDefined("status_addr") {
		cfg.StatusAddr = strings.TrimSpace(raw.StatusAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeList(raw.CorsOrigins)
	}
	if meta.IsDefined("connect_timeout") {
		if cfg.Session.ConnectTimeout, err = parseDuration("connect_timeout", raw.ConnectTimeout); err != nil {
			return ClientConfig{}, err
		}
	}
	if meta.IsDefined("write_timeout") {
		if cfg.Session.WriteTimeout, err = parseDuration("write_timeout", raw.WriteTimeout); err != nil {
			return ClientConfig{}, err
		}
	}
	if meta.IsDefined("max_connect_attempts") {
		cfg.Session.MaxConnectAttempts = raw.MaxConnectAttempts
	}
	if meta.IsDefined("security_mode") {
		cfg.Session.SecurityMode = session.NormalizeSecurityMode(session.SecurityMode(raw.SecurityMode))
	}

	if meta.IsDefined("tls", "ca_file") {
		cfg.Session.TLS.CAFile = strings.TrimSpace(raw.TLS.CAFile)
	}
	if meta.IsDefined("tls", "server_name") {
		cfg.Session.TLS.ServerName = strings.TrimSpace(raw.TLS.ServerName)
	}
	if meta.IsDefined("tls", "insecure_skip_verify") {
		cfg.Session.TLS.InsecureSkipVerify = raw.TLS.InsecureSkipVerify
	}

	if meta.IsDefined("backoff", "initial") {
		if cfg.Session.Backoff.InitialDelay, err = parseDuration("backoff.initial", raw.Backoff.Initial); err != nil {
			return ClientConfig{}, err
		}
	}
	if meta.IsDefined("backoff", "multiplier") {
		cfg.Session.Backoff.Multiplier = raw.Backoff.Multiplier
	}
	if meta.IsDefined("backoff", "max") {
		if cfg.Session.Backoff.MaxDelay, err = parseDuration("backoff.max", raw.Backoff.Max); err != nil {
			return ClientConfig{}, err
		}
	}
	if meta.IsDefined("backoff", "jitter") {
		cfg.Session.Backoff.Jitter = raw.Backoff.Jitter
	}

	if cfg.CatalogPath != "" && !filepath.IsAbs(cfg.CatalogPath) {
		cfg.CatalogPath = filepath.Join(filepath.Dir(path), cfg.CatalogPath)
	}
	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func ValidateClientConfig(cfg ClientConfig) error {
	target, err := session.DeriveURL(cfg.Origin)
	if err != nil {
		return fmt.Errorf("client config origin: %w", err)
	}
	if _, err := protocol.NormalizeDialect(cfg.Dialect); err != nil {
		return fmt.Errorf("client config dialect: %w", err)
	}
	if strings.TrimSpace(cfg.CatalogPath) == "" {
		return fmt.Errorf("client config missing catalog")
	}
	if err := cfg.Session.ValidateClientTransport(target); err != nil {
		return fmt.Errorf("client config transport: %w", err)
	}
	if cfg.Session.MaxConnectAttempts < 0 {
		return fmt.Errorf("client config max_connect_attempts must be >= 0")
	}
	return nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse %s: must be positive", key)
	}
	return d, nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
