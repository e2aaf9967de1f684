package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the signature algorithm used for both token
// kinds. The manager treats the underlying library as an opaque
// sign/verify capability; callers never see its error types.
type SigningMethod string

const (
	// MethodEd25519 signs with an Ed25519 key pair (default).
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs with a shared HMAC secret.
	MethodHS256 SigningMethod = "hs256"
)

// Verification failures form a closed set. Every error returned by
// Parse* matches exactly one of these; callers never need to inspect
// the signing library's own error values.
var (
	// ErrMalformed covers undecodable, forged, or otherwise structurally
	// invalid tokens.
	ErrMalformed = errors.New("token malformed or badly signed")
	// ErrExpired covers tokens whose signature is valid but whose exp is
	// in the past.
	ErrExpired = errors.New("token expired")
	// ErrWrongType is returned when an access token is presented where a
	// refresh token is required, or vice versa.
	ErrWrongType = errors.New("unexpected token type")
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Config defines the token wire parameters. Issuer and Audience are
// fixed per deployment; Leeway tolerates clock skew between signer and
// verifier.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// Manager mints and verifies the two token kinds. Immutable after
// construction and safe for concurrent use.
type Manager struct {
	config Config
}

// AccessClaims are carried by short-lived access tokens. The jti lives
// in RegisteredClaims.ID.
type AccessClaims struct {
	UserID    string `json:"uid"`
	DeviceID  string `json:"dev"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by refresh tokens and additionally bind the
// rotation family the token belongs to.
type RefreshClaims struct {
	UserID    string `json:"uid"`
	DeviceID  string `json:"dev"`
	FamilyID  string `json:"fam"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// NewManager validates the signing configuration. A misconfigured key
// is fatal here rather than at first use.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return nil, errors.New("refresh TTL must not be shorter than access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// AccessTTL reports the configured access token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.config.AccessTTL }

// RefreshTTL reports the configured refresh token lifetime. Ledger and
// registry entries expire at this horizon.
func (m *Manager) RefreshTTL() time.Duration { return m.config.RefreshTTL }

// CreateAccess mints a signed access token for the user/device pair.
func (m *Manager) CreateAccess(userID, deviceID, jti string) (string, error) {
	claims := AccessClaims{
		UserID:           userID,
		DeviceID:         deviceID,
		TokenType:        typeAccess,
		RegisteredClaims: m.registered(jti, m.config.AccessTTL),
	}
	return m.sign(claims)
}

// CreateRefresh mints a signed refresh token bound to a rotation family.
func (m *Manager) CreateRefresh(userID, deviceID, familyID, jti string) (string, error) {
	claims := RefreshClaims{
		UserID:           userID,
		DeviceID:         deviceID,
		FamilyID:         familyID,
		TokenType:        typeRefresh,
		RegisteredClaims: m.registered(jti, m.config.RefreshTTL),
	}
	return m.sign(claims)
}

// ParseAccess verifies and decodes an access token.
func (m *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != typeAccess {
		return nil, ErrWrongType
	}
	return claims, nil
}

// ParseRefresh verifies and decodes a refresh token.
func (m *Manager) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != typeRefresh {
		return nil, ErrWrongType
	}
	return claims, nil
}

// ParseRefreshLenient verifies the signature but tolerates an expired
// exp claim. Logout uses it so a client can still tear down its family
// with a token that lapsed minutes ago.
func (m *Manager) ParseRefreshLenient(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenStr, claims); err != nil && !errors.Is(err, ErrExpired) {
		return nil, err
	}
	if claims.TokenType != typeRefresh {
		return nil, ErrWrongType
	}
	return claims, nil
}

func (m *Manager) registered(jti string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	rc := jwt.RegisteredClaims{
		ID:        jti,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    m.config.Issuer,
	}
	if m.config.Audience != "" {
		rc.Audience = jwt.ClaimStrings{m.config.Audience}
	}
	return rc
}

func (m *Manager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(m.method(), claims)
	key, err := m.signKey()
	if err != nil {
		return "", err
	}
	return token.SignedString(key)
}

func (m *Manager) parse(tokenStr string, claims jwt.Claims) error {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != m.method().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.verifyKey()
	})
	if err != nil {
		return classify(err)
	}
	if !token.Valid {
		return ErrMalformed
	}
	return nil
}

// classify collapses the signing library's error surface into the
// closed set above. Expiry is the only case the protocol treats
// differently from a forged token.
func classify(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpired
	}
	return ErrMalformed
}

func (m *Manager) method() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (m *Manager) signKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodHS256:
		return m.config.PrivateKey, nil
	default:
		return parseEdPrivateKey(m.config.PrivateKey)
	}
}

func (m *Manager) verifyKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodHS256:
		return m.config.PrivateKey, nil
	default:
		return parseEdPublicKey(m.config.PublicKey)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
