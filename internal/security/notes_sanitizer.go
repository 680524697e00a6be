// Package security はアプリケーションのセキュリティ機能を提供する。
//
// NotesSanitizer はユーザーが入力する自由記述テキスト（トレーニングメモ、
// 食事メモ等）をサニタイズし、保存値にHTMLが混入してフロントエンドで
// XSSを引き起こすことを防ぐ。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NotesSanitizer はユーザー入力テキストのサニタイズ機能のインターフェース。
type NotesSanitizer interface {
	// Sanitize はテキストからすべてのHTMLタグを除去して返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// notesSanitizer はNotesSanitizerの実装。
// bluemondayのStrictPolicy（全タグ除去）を保持し、スレッドセーフに動作する。
type notesSanitizer struct {
	policy *bluemonday.Policy
}

// NewNotesSanitizer はNotesSanitizerの新しいインスタンスを生成する。
// メモ欄は装飾を持たないプレーンテキストとして扱うため、
// 許可タグなしのStrictPolicyを使用する。
func NewNotesSanitizer() NotesSanitizer {
	return &notesSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はテキストからHTMLタグを除去し、前後の空白を取り除いて返す。
func (s *notesSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
