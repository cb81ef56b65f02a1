package notice

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultLogKey  = "notices:log"
	DefaultLogSize = 200
)

// RedisLog appends notices to a capped Redis list.
type RedisLog struct {
	rdb *redis.Client
	key string
	max int64
}

func NewRedisLog(rdb *redis.Client, key string, max int) *RedisLog {
	if key == "" {
		key = DefaultLogKey
	}
	if max <= 0 {
		max = DefaultLogSize
	}
	return &RedisLog{rdb: rdb, key: key, max: int64(max)}
}

func (l *RedisLog) Notify(ctx context.Context, n Notice) {
	data, err := json.Marshal(n)
	if err != nil {
		log.Error().Err(err).Str("notice_id", n.ID).Msg("could not encode notice")
		return
	}

	pipe := l.rdb.TxPipeline()
	pipe.RPush(ctx, l.key, data)
	pipe.LTrim(ctx, l.key, -l.max, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("notice_id", n.ID).Msg("could not store notice")
	}
}

// Recent returns up to limit notices, newest first.
func (l *RedisLog) Recent(ctx context.Context, limit int) ([]Notice, error) {
	if limit <= 0 || int64(limit) > l.max {
		limit = int(l.max)
	}
	entries, err := l.rdb.LRange(ctx, l.key, -int64(limit), -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Notice, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		var n Notice
		if err := json.Unmarshal([]byte(entries[i]), &n); err == nil {
			out = append(out, n)
		}
	}
	return out, nil
}
