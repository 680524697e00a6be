package auth

import (
	"crypto/sha256"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/fitlog/internal/model"
)

const (
	// sessionTTL はトークンの有効期間。発行時に固定され、呼び出しごとの変更はできない。
	sessionTTL = 7 * 24 * time.Hour
	// clockSkewLeeway は有効期限判定で許容するクロックスキュー。
	clockSkewLeeway = 5 * time.Second
)

// TokenCodec は署名付きセッショントークンの発行と検証を行う。
// 署名鍵はプロセス全体の秘密設定から起動時に1回導出され、以後不変。
// 秘密値を変更すると発行済みの全トークンが一斉に無効になる。
type TokenCodec struct {
	key []byte
	now func() time.Time
}

// NewTokenCodec はTokenCodecを生成する。
// secretからSHA-256でHMAC署名鍵を導出する。
func NewTokenCodec(secret string) *TokenCodec {
	key := sha256.Sum256([]byte(secret))
	return &TokenCodec{
		key: key[:],
		now: time.Now,
	}
}

// sessionClaims はセッショントークンのペイロード。
// 認証済みユーザーの識別情報とiat/expクレームを持つ。
type sessionClaims struct {
	User model.Identity `json:"user"`
	jwt.RegisteredClaims
}

// Encrypt はIdentityを含むHMAC-SHA256署名付きトークンを発行する。
// 有効期限は発行時刻から7日間。
func (c *TokenCodec) Encrypt(identity model.Identity) (string, error) {
	now := c.now()
	claims := sessionClaims{
		User: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Decrypt はトークンを検証し、ペイロードのIdentityを返す。
// 署名不正・期限切れ・構造不正はすべて同一の「セッションなし」として
// nilに正規化する。失敗理由は呼び出し側に漏らさない。
func (c *TokenCodec) Decrypt(token string) *model.Identity {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{},
		func(t *jwt.Token) (any, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkewLeeway),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return nil
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok {
		return nil
	}

	identity := claims.User
	return &identity
}

// TTL はトークンの有効期間を返す。Cookieの有効期限に揃えるために使う。
func (c *TokenCodec) TTL() time.Duration {
	return sessionTTL
}
