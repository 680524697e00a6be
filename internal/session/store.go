// Package session はセッショントークンのCookieへの保存・破棄・読み出しを提供する。
// トークン自体が唯一の真実の源であり、サーバー側のセッションテーブルは持たない。
package session

import (
	"net/http"
	"time"

	"github.com/hitoshi/fitlog/internal/model"
)

// CookieName はセッショントークンを保持するCookieの名前。
const CookieName = "session"

// TokenCodec はトークンの発行と検証に必要なインターフェース。
// auth.TokenCodecの部分集合として定義する。
type TokenCodec interface {
	Encrypt(identity model.Identity) (string, error)
	Decrypt(token string) *model.Identity
	TTL() time.Duration
}

// Config はCookie属性の設定。
type Config struct {
	CookieSecure bool // 本番環境ではtrue
	CookieDomain string
}

// Store はHTTP Cookieを介したセッションの読み書きを行う。
type Store struct {
	codec  TokenCodec
	config Config
}

// NewStore はStoreを生成する。
func NewStore(codec TokenCodec, config Config) *Store {
	return &Store{
		codec:  codec,
		config: config,
	}
}

// CreateSession はIdentityからトークンを発行し、HTTP Only Cookieとして設定する。
// Cookieの有効期限はトークンの有効期限に揃える。
func (s *Store) CreateSession(w http.ResponseWriter, identity model.Identity) error {
	token, err := s.codec.Encrypt(identity)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.config.CookieDomain,
		Expires:  time.Now().Add(s.codec.TTL()),
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// DestroySession はCookieを空の値と過去の有効期限で上書きし、
// 以前の値にかかわらずブラウザに即座に破棄させる。
func (s *Store) DestroySession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.config.CookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CurrentIdentity はリクエストのCookieからトークンを読み取り検証する。
// Cookieなし・形式不正・期限切れ・改ざんはすべて一様にnilを返す。
func (s *Store) CurrentIdentity(r *http.Request) *model.Identity {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return s.codec.Decrypt(cookie.Value)
}
