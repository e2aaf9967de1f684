package family

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps backing-store connectivity failures. The
// ledger never destroys a family on one of these; only explicit
// protocol conditions tear chains down.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrNotFound is returned when the family record does not exist,
// whether expired, destroyed, or never created.
var ErrNotFound = errors.New("family not found")

// ErrNotMember is returned by Advance when the presented jti is neither
// the current nor the previous member of the chain.
var ErrNotMember = errors.New("token is not a family member")

// ErrChainLimit is returned by Advance once the chain has reached its
// configured maximum length. The family itself is left in place.
var ErrChainLimit = errors.New("rotation chain limit exceeded")

// ErrCorrupt is returned when a stored family record cannot be decoded.
var ErrCorrupt = errors.New("family record corrupt")

// DefaultMaxChainLength bounds a rotation chain regardless of
// legitimate use, so a leaked refresh token replayed alongside the real
// client cannot be ridden indefinitely.
const DefaultMaxChainLength = 10

const (
	advanceStatusNotFound  int64 = 0
	advanceStatusNotMember int64 = 1
	advanceStatusChainFull int64 = 2
	advanceStatusAdvanced  int64 = 3
	advanceStatusCorrupt   int64 = 4
)

// advanceLua is the compare-and-swap at the heart of the rotation
// protocol. It validates membership and chain length, rewrites the
// record, refreshes its TTL, and reports every jti that fell out of
// the {current, previous} window so the caller can burn them.
//
// Advancing from the current jti keeps it around as previous, so one
// in-flight duplicate (client retry, double submit) still lands.
// Advancing from the previous jti consumes that allowance: the
// superseded current and the presented jti are both evicted and the
// previous slot is cleared. Without this a single leaked predecessor
// could ride the chain forever.
const advanceScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return {0}
end

local ok, fam = pcall(cjson.decode, data)
if not ok or type(fam) ~= "table" or type(fam["currentJti"]) ~= "string" then
  return {4}
end

local old = ARGV[1]
local new = ARGV[2]
local max_chain = tonumber(ARGV[3])
local now_unix = tonumber(ARGV[4])
local ttl_ms = tonumber(ARGV[5])
local family_id = ARGV[6]
local user_prefix = ARGV[7]

if fam["currentJti"] ~= old and fam["previousJti"] ~= old then
  return {1}
end

if fam["chainLength"] >= max_chain then
  return {2}
end

local evicted = {}
if fam["currentJti"] == old then
  if fam["previousJti"] and fam["previousJti"] ~= "" then
    table.insert(evicted, fam["previousJti"])
  end
  fam["previousJti"] = old
else
  table.insert(evicted, fam["currentJti"])
  table.insert(evicted, old)
  fam["previousJti"] = nil
end

fam["currentJti"] = new
fam["chainLength"] = fam["chainLength"] + 1
fam["lastRotatedAt"] = now_unix

local updated = cjson.encode(fam)
redis.call("SET", KEYS[1], updated, "PX", ttl_ms)

local user_key = user_prefix .. fam["userId"]
redis.call("SADD", user_key, family_id)
redis.call("PEXPIRE", user_key, ttl_ms)

local ret = {3, updated}
for i, jti in ipairs(evicted) do
  ret[2 + i] = jti
end
return ret
`

var advanceLua = redis.NewScript(advanceScript)

// Revoker burns token identifiers evicted from a family. Satisfied by
// revocation.Registry.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// Config tunes a [Ledger].
type Config struct {
	// Prefix namespaces family records; defaults to "family".
	Prefix string
	// UserPrefix namespaces the per-user family index; defaults to
	// "user_families".
	UserPrefix string
	// MaxChainLength bounds successful rotations per family; defaults
	// to [DefaultMaxChainLength].
	MaxChainLength int
	// TTL is the refresh-token maximum lifetime. Records expire at this
	// horizon, refreshed on every write, so an idle family silently
	// lapses and cannot be resurrected.
	TTL time.Duration
}

// Ledger is the persistent record of rotation chains, one per login
// session, backed by any Redis-compatible store.
type Ledger struct {
	redis   redis.UniversalClient
	revoker Revoker
	config  Config
}

// NewLedger creates a [Ledger]. The revoker receives the current and
// previous jti of any destroyed family.
func NewLedger(redisClient redis.UniversalClient, revoker Revoker, cfg Config) *Ledger {
	if cfg.Prefix == "" {
		cfg.Prefix = "family"
	}
	if cfg.UserPrefix == "" {
		cfg.UserPrefix = "user_families"
	}
	if cfg.MaxChainLength <= 0 {
		cfg.MaxChainLength = DefaultMaxChainLength
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Ledger{
		redis:   redisClient,
		revoker: revoker,
		config:  cfg,
	}
}

func (l *Ledger) key(familyID string) string {
	return l.config.Prefix + ":" + familyID
}

func (l *Ledger) userKey(userID string) string {
	return l.config.UserPrefix + ":" + userID
}

// TTL reports the configured record lifetime.
func (l *Ledger) TTL() time.Duration { return l.config.TTL }

// MaxChainLength reports the configured rotation bound.
func (l *Ledger) MaxChainLength() int { return l.config.MaxChainLength }

// Create persists a new family with chain length 1 and indexes it under
// the owning user.
func (l *Ledger) Create(ctx context.Context, familyID, jti, userID, deviceID string) (*Family, error) {
	now := time.Now().Unix()
	fam := &Family{
		FamilyID:      familyID,
		UserID:        userID,
		DeviceID:      deviceID,
		CurrentJTI:    jti,
		ChainLength:   1,
		CreatedAt:     now,
		LastRotatedAt: now,
	}

	data, err := encode(fam)
	if err != nil {
		return nil, err
	}

	_, err = l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, l.key(familyID), data, l.config.TTL)
		pipe.SAdd(ctx, l.userKey(userID), familyID)
		pipe.Expire(ctx, l.userKey(userID), l.config.TTL)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return fam, nil
}

// Get fetches a family without mutating TTL or any other state.
func (l *Ledger) Get(ctx context.Context, familyID string) (*Family, error) {
	data, err := l.redis.Get(ctx, l.key(familyID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	fam, err := decode(data)
	if err != nil {
		return nil, err
	}
	fam.FamilyID = familyID
	return fam, nil
}

// IsMember reports whether jti is currently rotatable within the family.
func (l *Ledger) IsMember(ctx context.Context, familyID, jti string) (bool, error) {
	fam, err := l.Get(ctx, familyID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return fam.IsMember(jti), nil
}

// Advance atomically swaps oldJTI for newJTI at the head of the chain.
// It fails with [ErrChainLimit] once the chain is exhausted and with
// [ErrNotMember] when oldJTI is neither current nor previous. On
// success it returns the updated record plus every jti evicted from
// the membership window; the caller is expected to revoke them.
func (l *Ledger) Advance(ctx context.Context, familyID, oldJTI, newJTI string) (*Family, []string, error) {
	result, err := advanceLua.Run(
		ctx,
		l.redis,
		[]string{l.key(familyID)},
		oldJTI,
		newJTI,
		l.config.MaxChainLength,
		time.Now().Unix(),
		l.config.TTL.Milliseconds(),
		familyID,
		l.config.UserPrefix+":",
	).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	parts, ok := result.([]interface{})
	if !ok || len(parts) == 0 {
		return nil, nil, fmt.Errorf("%w: invalid advance script response", ErrRedisUnavailable)
	}
	code, ok := parts[0].(int64)
	if !ok {
		return nil, nil, fmt.Errorf("%w: invalid advance script status", ErrRedisUnavailable)
	}

	switch code {
	case advanceStatusNotFound:
		return nil, nil, ErrNotFound
	case advanceStatusNotMember:
		return nil, nil, ErrNotMember
	case advanceStatusChainFull:
		return nil, nil, ErrChainLimit
	case advanceStatusAdvanced:
		if len(parts) < 2 {
			return nil, nil, fmt.Errorf("%w: missing advance script payload", ErrRedisUnavailable)
		}
		blob, err := scriptString(parts[1])
		if err != nil {
			return nil, nil, err
		}
		var evicted []string
		for _, part := range parts[2:] {
			jti, err := scriptString(part)
			if err != nil {
				return nil, nil, err
			}
			if jti != "" {
				evicted = append(evicted, jti)
			}
		}
		fam, decErr := decode([]byte(blob))
		if decErr != nil {
			return nil, nil, decErr
		}
		fam.FamilyID = familyID
		return fam, evicted, nil
	case advanceStatusCorrupt:
		return nil, nil, ErrCorrupt
	default:
		return nil, nil, fmt.Errorf("%w: unknown advance script status", ErrRedisUnavailable)
	}
}

// Destroy revokes the family's current and previous jti and removes the
// record and its index entry. Destroying a family that no longer exists
// is a no-op, so teardown paths may retry safely.
func (l *Ledger) Destroy(ctx context.Context, familyID string) error {
	fam, err := l.Get(ctx, familyID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	// Burn members before dropping the record: if revocation fails the
	// family survives intact rather than leaving usable jtis behind.
	if l.revoker != nil {
		if err := l.revoker.Revoke(ctx, fam.CurrentJTI, l.config.TTL); err != nil {
			return err
		}
		if err := l.revoker.Revoke(ctx, fam.PreviousJTI, l.config.TTL); err != nil {
			return err
		}
	}

	_, err = l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, l.key(familyID))
		pipe.SRem(ctx, l.userKey(fam.UserID), familyID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// DestroyAllForUser destroys every family in the user's index.
//
// ATOMICITY NOTE: the index is read first and families are destroyed
// one by one; a family created between the read and the deletes is not
// captured. The race only affects logout-all semantics and the stray
// family still expires at its natural TTL.
func (l *Ledger) DestroyAllForUser(ctx context.Context, userID string) error {
	userKey := l.userKey(userID)

	familyIDs, err := l.redis.SMembers(ctx, userKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	for _, familyID := range familyIDs {
		if err := l.Destroy(ctx, familyID); err != nil {
			return err
		}
	}

	if err := l.redis.Del(ctx, userKey).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// ActiveFamilyIDs returns the indexed family IDs for a user. The index
// may include families that have already expired; callers wanting live
// records should Get each ID.
func (l *Ledger) ActiveFamilyIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := l.redis.SMembers(ctx, l.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ids, nil
}

// Ping returns a point-in-time availability check for the backing store.
func (l *Ledger) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := l.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func scriptString(v interface{}) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("%w: invalid advance script payload", ErrRedisUnavailable)
	}
}
