// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/unlock/lib/authority"
	"github.com/bureau-foundation/unlock/lib/capability"
	"github.com/bureau-foundation/unlock/lib/roompolicy"
)

// EnvironmentVariable names the variable Load reads the config path from.
const EnvironmentVariable = "BUREAU_UNLOCK_CONFIG"

// ProductionAttemptTimeout is the attempt timeout applied in
// production when the file sets none.
const ProductionAttemptTimeout = 30 * time.Second

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the unlock client configuration.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Authority locates the authority signing key.
	Authority AuthorityConfig `yaml:"authority"`

	// Unlock configures the submission machine.
	Unlock UnlockConfig `yaml:"unlock"`

	// Per-environment overrides, applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Authority *AuthorityConfig `yaml:"authority,omitempty"`
	Unlock    *UnlockConfig    `yaml:"unlock,omitempty"`
}

// AuthorityConfig locates the 32-byte Ed25519 seed. Exactly one source
// must be set: PrivateKey, PrivateKeyFile, or SealedKeyFile together
// with IdentityFile.
type AuthorityConfig struct {
	// PrivateKey is the seed as 64 hex characters. Usually written as
	// ${UNLOCK_AUTHORITY_KEY} so the value comes from the environment.
	PrivateKey string `yaml:"private_key"`

	// PrivateKeyFile holds the hex seed on its first line. "-" reads
	// standard input.
	PrivateKeyFile string `yaml:"private_key_file"`

	// SealedKeyFile is an age-encrypted hex seed, as written by
	// "bureau-unlock keygen --seal-to".
	SealedKeyFile string `yaml:"sealed_key_file"`

	// IdentityFile holds the age identity that decrypts SealedKeyFile.
	IdentityFile string `yaml:"identity_file"`
}

// UnlockConfig configures the submission machine. Durations use Go
// syntax ("2s", "500ms").
type UnlockConfig struct {
	// DisplayDelay is the minimum time an attempt stays in loading.
	// Default: 2s
	DisplayDelay string `yaml:"display_delay"`

	// AttemptTimeout bounds verification. Empty or "0" disables it.
	AttemptTimeout string `yaml:"attempt_timeout"`

	// Owner is the principal asserted as every room's owner.
	// Default: alice
	Owner string `yaml:"owner"`

	// RevokedTokens lists token IDs (32 hex characters) that must be
	// rejected.
	RevokedTokens []string `yaml:"revoked_tokens"`
}

// Default returns the default configuration, used as the base before
// the file is loaded.
func Default() *Config {
	return &Config{
		Environment: Development,
		Unlock: UnlockConfig{
			DisplayDelay: "2s",
			Owner:        roompolicy.DefaultOwner,
		},
	}
}

// Load loads configuration from the file named by BUREAU_UNLOCK_CONFIG.
// There is no fallback: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your unlock.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if c.Unlock.AttemptTimeout == "" && (overrides == nil || overrides.Unlock == nil || overrides.Unlock.AttemptTimeout == "") {
			c.Unlock.AttemptTimeout = ProductionAttemptTimeout.String()
		}
	}
	if overrides == nil {
		return
	}

	if overrides.Authority != nil {
		// A source named in the override replaces the base source
		// entirely, so the two never combine into an ambiguous pair.
		if *overrides.Authority != (AuthorityConfig{}) {
			c.Authority = *overrides.Authority
		}
	}

	if overrides.Unlock != nil {
		if overrides.Unlock.DisplayDelay != "" {
			c.Unlock.DisplayDelay = overrides.Unlock.DisplayDelay
		}
		if overrides.Unlock.AttemptTimeout != "" {
			c.Unlock.AttemptTimeout = overrides.Unlock.AttemptTimeout
		}
		if overrides.Unlock.Owner != "" {
			c.Unlock.Owner = overrides.Unlock.Owner
		}
		if overrides.Unlock.RevokedTokens != nil {
			c.Unlock.RevokedTokens = overrides.Unlock.RevokedTokens
		}
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Authority.PrivateKey = expandVars(c.Authority.PrivateKey, vars)
	c.Authority.PrivateKeyFile = expandVars(c.Authority.PrivateKeyFile, vars)
	c.Authority.SealedKeyFile = expandVars(c.Authority.SealedKeyFile, vars)
	c.Authority.IdentityFile = expandVars(c.Authority.IdentityFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. vars is
// consulted before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	sources := 0
	if c.Authority.PrivateKey != "" {
		sources++
		if c.Environment == Production {
			errs = append(errs, errors.New("authority.private_key is not allowed in production; use private_key_file or sealed_key_file"))
		}
	}
	if c.Authority.PrivateKeyFile != "" {
		sources++
	}
	if c.Authority.SealedKeyFile != "" {
		sources++
		if c.Authority.IdentityFile == "" {
			errs = append(errs, errors.New("authority.identity_file is required with authority.sealed_key_file"))
		}
	} else if c.Authority.IdentityFile != "" {
		errs = append(errs, errors.New("authority.identity_file is set without authority.sealed_key_file"))
	}
	switch {
	case sources == 0:
		errs = append(errs, errors.New("one of authority.private_key, authority.private_key_file or authority.sealed_key_file is required"))
	case sources > 1:
		errs = append(errs, errors.New("only one of authority.private_key, authority.private_key_file and authority.sealed_key_file may be set"))
	}

	if _, err := c.DisplayDelay(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.AttemptTimeout(); err != nil {
		errs = append(errs, err)
	}

	if !capability.ValidName(c.Unlock.Owner) {
		errs = append(errs, fmt.Errorf("unlock.owner %q is not a valid principal name", c.Unlock.Owner))
	}

	for _, id := range c.Unlock.RevokedTokens {
		if decoded, err := hex.DecodeString(id); err != nil || len(decoded) != 16 {
			errs = append(errs, fmt.Errorf("unlock.revoked_tokens: %q is not a 32-character hex token ID", id))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// DisplayDelay parses unlock.display_delay.
func (c *Config) DisplayDelay() (time.Duration, error) {
	return parseDuration("unlock.display_delay", c.Unlock.DisplayDelay)
}

// AttemptTimeout parses unlock.attempt_timeout. Zero means no timeout.
func (c *Config) AttemptTimeout() (time.Duration, error) {
	return parseDuration("unlock.attempt_timeout", c.Unlock.AttemptTimeout)
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("%s: %s is negative", field, value)
	}
	return duration, nil
}

// LoadAuthority reads the configured key source. The caller owns the
// returned key pair and must Close it.
func (c *Config) LoadAuthority() (*authority.KeyPair, error) {
	switch {
	case c.Authority.PrivateKey != "":
		return authority.FromHex([]byte(c.Authority.PrivateKey))
	case c.Authority.PrivateKeyFile != "":
		return authority.LoadFile(c.Authority.PrivateKeyFile)
	case c.Authority.SealedKeyFile != "":
		return authority.LoadSealed(c.Authority.SealedKeyFile, c.Authority.IdentityFile)
	default:
		return nil, errors.New("no authority key configured")
	}
}

// Revocations returns the configured revocation list. Entries never
// expire.
func (c *Config) Revocations() *capability.Blacklist {
	return capability.NewBlacklist(c.Unlock.RevokedTokens...)
}
