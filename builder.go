package famguard

import (
	"errors"

	"github.com/famguard/famguard/family"
	"github.com/famguard/famguard/fingerprint"
	internalaudit "github.com/famguard/famguard/internal/audit"
	"github.com/famguard/famguard/internal/rate"
	"github.com/famguard/famguard/jwt"
	"github.com/famguard/famguard/revocation"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. A builder is single-use.
type Builder struct {
	config Config
	redis  *redis.Client

	auditSink AuditSink

	built bool
}

// New starts a builder preloaded with defaults.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the backing-store client. Required.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the destination for audit events. Ignored unless
// auditing is enabled in the config.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles metric counting.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the validate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	jm, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
		PublicKey:     cloneBytes(cfg.JWT.PublicKey),
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	registry := revocation.NewRegistry(b.redis, cfg.Family.RevokedPrefix)
	ledger := family.NewLedger(b.redis, registry, family.Config{
		Prefix:         cfg.Family.RedisPrefix,
		UserPrefix:     cfg.Family.UserIndexPrefix,
		MaxChainLength: cfg.Family.MaxChainLength,
		TTL:            cfg.JWT.RefreshTTL,
	})

	engine := &Engine{
		config:     cfg,
		jwtManager: jm,
		ledger:     ledger,
		registry:   registry,
		hasher:     fingerprint.Hasher{Salt: cfg.Fingerprint.Salt},
	}

	engine.rateLimiter = rate.New(b.redis, rate.Config{
		EnableRotationThrottle:   cfg.Security.EnableRotationThrottle,
		MaxRotationAttempts:      cfg.Security.MaxRotationAttempts,
		RotationCooldownDuration: cfg.Security.RotationCooldownDuration,
	})
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
