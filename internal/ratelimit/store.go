// Package ratelimit は固定ウィンドウ方式のレート制限カウンタを提供する。
// カウンタの原子的なインクリメントはバッキングストアが保証する。
package ratelimit

import (
	"context"
	"time"
)

// CounterStore はレート制限カウンタのバッキングストアのインターフェース。
// Incrは同一キーへの並行リクエストに対して、各リクエストがちょうど1回
// インクリメントし、インクリメント後の一貫したカウントを観測することを保証する。
type CounterStore interface {
	// Incr はキーのカウンタをインクリメントし、インクリメント後の値を返す。
	// ウィンドウ境界でカウンタはリセットされる。
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}
