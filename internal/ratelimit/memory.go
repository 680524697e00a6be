package ratelimit

import (
	"context"
	"sync"
	"time"
)

// defaultCleanupInterval は期限切れエントリのクリーンアップ間隔。
const defaultCleanupInterval = 5 * time.Minute

// counterEntry はキーごとのカウンタとウィンドウ終端を保持する。
type counterEntry struct {
	count     int64
	windowEnd time.Time
}

// MemoryStore はプロセス内メモリのカウンタストア。
// 単一ノード構成およびテスト用。複数プロセス間では共有されない。
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*counterEntry
	now     func() time.Time
	stopCh  chan struct{}
}

// NewMemoryStore はMemoryStoreを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*counterEntry),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go s.cleanupLoop()

	return s
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (s *MemoryStore) Stop() {
	close(s.stopCh)
}

// Incr はキーのカウンタをインクリメントして返す。
// ウィンドウ終端を過ぎていた場合はカウンタを1から開始する。
func (s *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &counterEntry{windowEnd: now.Add(window)}
		s.entries[key] = e
	}

	e.count++
	return e.count, nil
}

// EntryCount は現在保持しているカウンタのエントリ数を返す。
// テストおよびメトリクス用。
func (s *MemoryStore) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的に削除する。
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup はウィンドウ終端を過ぎたエントリを削除する。
func (s *MemoryStore) cleanup() {
	now := s.now()

	s.mu.Lock()
	for key, e := range s.entries {
		if now.After(e.windowEnd) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

// compile-time interface check
var _ CounterStore = (*MemoryStore)(nil)
