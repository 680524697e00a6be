// Package auth はパスワード認証とセッショントークンの発行・検証を提供する。
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// hashIterations はPBKDF2の反復回数。
	hashIterations = 120000
	// hashKeyLen は導出鍵の長さ（バイト）。
	hashKeyLen = 32
	// credentialSeparator は保存形式 "salt:hash" の区切り文字。
	credentialSeparator = ":"
)

// Hasher はパスワードの不可逆表現を導出・検証する。
// ペッパーはプロセス全体の秘密設定から注入され、全クレデンシャルに共通で混ぜ込まれる。
type Hasher struct {
	pepper string
}

// NewHasher はHasherを生成する。pepperにはプロセス全体の秘密値を渡す。
func NewHasher(pepper string) *Hasher {
	return &Hasher{pepper: pepper}
}

// Hash はパスワードとソルトからPBKDF2-SHA256でハッシュを導出し、
// 小文字16進文字列で返す。同一の(password, salt, pepper)に対して決定的。
func (h *Hasher) Hash(password, salt string) string {
	key := pbkdf2.Key([]byte(password+h.pepper), []byte(salt), hashIterations, hashKeyLen, sha256.New)
	return hex.EncodeToString(key)
}

// GenerateSalt は暗号的に安全な乱数源からソルトを生成する。
// UUID v4（122ビットのエントロピー）を文字列表現で返す。
func GenerateSalt() string {
	return uuid.New().String()
}

// NewCredential はパスワードから保存用のクレデンシャル "salt:hash" を生成する。
func (h *Hasher) NewCredential(password string) string {
	salt := GenerateSalt()
	return salt + credentialSeparator + h.Hash(password, salt)
}

// Verify はパスワードを保存済みクレデンシャル "salt:hash" と照合する。
// 保存値が不正な形式（区切りなし、ソルトまたはハッシュが空）の場合は
// panicやエラーではなくfalseを返す（フェイルクローズ）。
// 比較は定数時間で行い、不一致位置に比例したタイミング情報を漏らさない。
func (h *Hasher) Verify(password, stored string) bool {
	salt, hash, found := strings.Cut(stored, credentialSeparator)
	if !found || salt == "" || hash == "" {
		return false
	}

	computed := h.Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
