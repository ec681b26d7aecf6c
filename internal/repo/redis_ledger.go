package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/Notho-freedom/Autoresponder/internal/domain"
)

// insertScript records an entry only when its key is absent, and maintains
// the recency index and the counters in the same atomic step.
//
// KEYS: entry, index, stats. ARGV: payload, score, fingerprint, email(0|1), sms(0|1).
var insertScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX') then
  redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])
  redis.call('HINCRBY', KEYS[3], 'total', 1)
  redis.call('HINCRBY', KEYS[3], 'email', tonumber(ARGV[4]))
  redis.call('HINCRBY', KEYS[3], 'sms', tonumber(ARGV[5]))
  return 1
end
return 0
`)

// purgeScript removes an entry and reverses its counter contributions.
//
// KEYS: entry, index, stats. ARGV: fingerprint.
var purgeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
  return 0
end
local e = cjson.decode(v)
redis.call('DEL', KEYS[1])
redis.call('ZREM', KEYS[2], ARGV[1])
redis.call('HINCRBY', KEYS[3], 'total', -1)
if e.sent_email then redis.call('HINCRBY', KEYS[3], 'email', -1) end
if e.sent_sms then redis.call('HINCRBY', KEYS[3], 'sms', -1) end
return 1
`)

// RedisLedger stores entries as JSON strings under <prefix>ledger:<fp>, with
// a sorted-set index by recording time and a hash of running counters.
type RedisLedger struct {
	Client *redis.Client
	Prefix string
}

// OpenRedis parses url, connects and pings the server.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// NewRedisLedger returns a ledger over c. prefix namespaces every key.
func NewRedisLedger(c *redis.Client, prefix string) *RedisLedger {
	return &RedisLedger{Client: c, Prefix: prefix}
}

func (l *RedisLedger) entryKey(fp string) string { return l.Prefix + "ledger:" + fp }
func (l *RedisLedger) indexKey() string          { return l.Prefix + "ledger:index" }
func (l *RedisLedger) statsKey() string          { return l.Prefix + "ledger:stats" }

func (l *RedisLedger) Exists(ctx context.Context, fingerprint string) (bool, error) {
	n, err := l.Client.Exists(ctx, l.entryKey(fingerprint)).Result()
	return n > 0, err
}

func (l *RedisLedger) InsertIfAbsent(ctx context.Context, e *domain.LedgerEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	keys := []string{l.entryKey(e.Fingerprint), l.indexKey(), l.statsKey()}
	n, err := insertScript.Run(ctx, l.Client, keys,
		payload, e.RecordedAt.UnixMilli(), e.Fingerprint, flag(e.SentEmail), flag(e.SentSMS),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (l *RedisLedger) Get(ctx context.Context, fingerprint string) (*domain.LedgerEntry, error) {
	b, err := l.Client.Get(ctx, l.entryKey(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var e domain.LedgerEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (l *RedisLedger) List(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		return []domain.LedgerEntry{}, nil
	}
	fps, err := l.Client.ZRevRange(ctx, l.indexKey(), 0, int64(limit-1)).Result()
	if err != nil || len(fps) == 0 {
		return []domain.LedgerEntry{}, err
	}
	keys := make([]string, len(fps))
	for i, fp := range fps {
		keys[i] = l.entryKey(fp)
	}
	vals, err := l.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.LedgerEntry, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue // purged between ZREVRANGE and MGET
		}
		var e domain.LedgerEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (l *RedisLedger) Stats(ctx context.Context) (domain.LedgerStats, error) {
	m, err := l.Client.HGetAll(ctx, l.statsKey()).Result()
	if err != nil {
		return domain.LedgerStats{}, err
	}
	total, _ := strconv.ParseInt(m["total"], 10, 64)
	email, _ := strconv.ParseInt(m["email"], 10, 64)
	sms, _ := strconv.ParseInt(m["sms"], 10, 64)
	return domain.NewLedgerStats(total, email, sms), nil
}

func (l *RedisLedger) Purge(ctx context.Context, fingerprint string) (bool, error) {
	keys := []string{l.entryKey(fingerprint), l.indexKey(), l.statsKey()}
	n, err := purgeScript.Run(ctx, l.Client, keys, fingerprint).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (l *RedisLedger) Ping(ctx context.Context) error {
	return l.Client.Ping(ctx).Err()
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
