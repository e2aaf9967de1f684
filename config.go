package famguard

import (
	"errors"
	"time"
)

// Config carries every tunable of the engine. Zero values fall back to
// the defaults from defaultConfig during Build, with the exception of
// JWT key material, which must always be provided.
type Config struct {
	JWT         JWTConfig
	Family      FamilyConfig
	Fingerprint FingerprintConfig
	Security    SecurityConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines the token wire parameters.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

/*
====================================
FAMILY CONFIG
====================================
*/

// FamilyConfig tunes the family ledger and revocation registry.
// Record TTLs always equal the refresh token lifetime, so the ledger
// and registry forget a token at the same horizon its signature would
// anyway stop verifying.
type FamilyConfig struct {
	RedisPrefix     string
	UserIndexPrefix string
	RevokedPrefix   string
	MaxChainLength  int
}

/*
====================================
FINGERPRINT CONFIG
====================================
*/

// FingerprintConfig tunes device identifier derivation. The salt keeps
// device identifiers deployment-specific so they cannot be correlated
// across services sharing the same clients.
type FingerprintConfig struct {
	Salt string
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig holds the per-family rotation throttle. The throttle
// slows an attacker racing the legitimate client through a leaked
// refresh token; it never destroys families.
type SecurityConfig struct {
	EnableRotationThrottle   bool
	MaxRotationAttempts      int
	RotationCooldownDuration time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process metric counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     time.Hour,
			RefreshTTL:    24 * time.Hour,
			SigningMethod: "ed25519",
			Leeway:        30 * time.Second,
		},
		Family: FamilyConfig{
			RedisPrefix:     "family",
			UserIndexPrefix: "user_families",
			RevokedPrefix:   "revoked",
			MaxChainLength:  10,
		},
		Security: SecurityConfig{
			EnableRotationThrottle:   false,
			MaxRotationAttempts:      30,
			RotationCooldownDuration: time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate fills defaulted fields in from defaultConfig and rejects
// configurations the engine cannot run with.
func (c *Config) Validate() error {
	def := defaultConfig()

	if c.JWT.AccessTTL <= 0 {
		c.JWT.AccessTTL = def.JWT.AccessTTL
	}
	if c.JWT.RefreshTTL <= 0 {
		c.JWT.RefreshTTL = def.JWT.RefreshTTL
	}
	if c.JWT.SigningMethod == "" {
		c.JWT.SigningMethod = def.JWT.SigningMethod
	}
	if c.JWT.Leeway < 0 {
		return errors.New("JWT Leeway must not be negative")
	}
	if c.JWT.AccessTTL >= c.JWT.RefreshTTL {
		return errors.New("JWT AccessTTL must be shorter than RefreshTTL")
	}

	switch c.JWT.SigningMethod {
	case "ed25519":
		if len(c.JWT.PrivateKey) == 0 || len(c.JWT.PublicKey) == 0 {
			return errors.New("ed25519 signing requires PrivateKey and PublicKey")
		}
	case "hs256":
		if len(c.JWT.PrivateKey) == 0 {
			return errors.New("hs256 signing requires PrivateKey secret")
		}
	default:
		return errors.New("unsupported JWT SigningMethod")
	}

	if c.Family.RedisPrefix == "" {
		c.Family.RedisPrefix = def.Family.RedisPrefix
	}
	if c.Family.UserIndexPrefix == "" {
		c.Family.UserIndexPrefix = def.Family.UserIndexPrefix
	}
	if c.Family.RevokedPrefix == "" {
		c.Family.RevokedPrefix = def.Family.RevokedPrefix
	}
	if c.Family.MaxChainLength <= 0 {
		c.Family.MaxChainLength = def.Family.MaxChainLength
	}

	if c.Security.EnableRotationThrottle {
		if c.Security.MaxRotationAttempts <= 0 {
			c.Security.MaxRotationAttempts = def.Security.MaxRotationAttempts
		}
		if c.Security.RotationCooldownDuration <= 0 {
			c.Security.RotationCooldownDuration = def.Security.RotationCooldownDuration
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		c.Audit.BufferSize = def.Audit.BufferSize
	}

	return nil
}
