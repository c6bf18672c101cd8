// Package config loads and validates the server configuration from a YAML
// file on a virtual filesystem.
package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"gopkg.in/yaml.v3"
)

type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type ServerConfig struct {
	Address string    `yaml:"address"`
	TLS     TLSConfig `yaml:"tls"`
}

type MimeEntry struct {
	Name         string `yaml:"name"`
	Compressible bool   `yaml:"compressible"`
}

type FilesConfig struct {
	Root        string               `yaml:"root"`
	Index       string               `yaml:"index"`
	Browse      bool                 `yaml:"browse"`
	Compression bool                 `yaml:"compression"`
	DefaultType string               `yaml:"default_type"`
	MimeTypes   map[string]MimeEntry `yaml:"mime_types"`
}

type AuthConfig struct {
	Realm string `yaml:"realm"`
	// Users maps user names to bcrypt hashes.
	Users map[string]string `yaml:"users"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Files     FilesConfig     `yaml:"files"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`

	fs   vfs.FileSystem
	path string
}

func New(fs vfs.FileSystem, path string) *Config {
	return &Config{
		fs:   fs,
		path: path,
	}
}

// Load reads the file the config was created with. A missing file is not an
// error, the defaults stand.
func (c *Config) Load() error {
	bs, err := vfs.ReadFile(c.fs, c.path)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			c.SetDefaults()
			return nil
		}
		return err
	}

	if err := yaml.Unmarshal(bs, c); err != nil {
		return fmt.Errorf("parse %s: %w", c.path, err)
	}

	c.SetDefaults()
	return nil
}

func (c *Config) SetDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":3000"
	}
	if c.Files.Root == "" {
		c.Files.Root = "."
	}
	if c.Files.Index == "" {
		c.Files.Index = "index.html"
	}
	if c.Auth.Realm == "" {
		c.Auth.Realm = "protected"
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = int(c.RateLimit.RPS)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

var levels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate collects every problem instead of stopping at the first.
func (c *Config) Validate() error {
	var result *multierror.Error

	if (c.Server.TLS.CertFile == "") != (c.Server.TLS.KeyFile == "") {
		result = multierror.Append(result, fmt.Errorf("server.tls needs both cert_file and key_file"))
	}

	if c.RateLimit.RPS < 0 {
		result = multierror.Append(result, fmt.Errorf("rate_limit.rps must not be negative"))
	}
	if c.RateLimit.Burst < 0 {
		result = multierror.Append(result, fmt.Errorf("rate_limit.burst must not be negative"))
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst == 0 {
		result = multierror.Append(result, fmt.Errorf("rate_limit.burst must be positive when rps is set"))
	}

	for ext, entry := range c.Files.MimeTypes {
		if entry.Name == "" {
			result = multierror.Append(result, fmt.Errorf("files.mime_types.%s misses a name", ext))
		}
	}

	for user, hash := range c.Auth.Users {
		if hash == "" {
			result = multierror.Append(result, fmt.Errorf("auth.users.%s misses a password hash", user))
		}
	}

	if !levels[c.Logging.Level] {
		result = multierror.Append(result, fmt.Errorf("logging.level '%s' is not one of debug, info, warn, error", c.Logging.Level))
	}

	return result.ErrorOrNil()
}
