package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore はRedisをバッキングストアとするカウンタストア。
// INCRの原子性により、複数プロセス間でも各リクエストがちょうど1回
// カウントされ、一貫したインクリメント後の値を観測する。
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore はRedis接続URLからRedisStoreを生成する。
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// NewRedisStoreWithClient は既存のクライアントからRedisStoreを生成する。
// テスト用（miniredis等）。
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// incrScript はINCRとTTL設定を単一の原子操作として実行する。
// TTLの有無をスクリプト内で確認するため、INCR成功後にTTL設定だけが
// 失敗してカウンタが期限なしで残り続けることはない。既存キーのTTLが
// 何らかの理由で失われていた場合も次のインクリメントで再設定される。
var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) == -1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Incr はキーのカウンタをインクリメントして返す。
// キーにはウィンドウ長のTTLが付与され、ウィンドウ経過でキーごと
// 消滅することでカウンタがリセットされる。
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := incrScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	return count, nil
}

// Close はRedis接続を閉じる。
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping はRedis接続を確認する。起動時のヘルスチェック用。
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// compile-time interface check
var _ CounterStore = (*RedisStore)(nil)
