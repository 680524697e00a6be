package auth

import (
	"testing"
	"time"

	"github.com/hitoshi/fitlog/internal/model"
)

func testIdentity() model.Identity {
	return model.Identity{
		UserID: "user-123",
		Email:  "a@b.com",
		Name:   "テスト太郎",
	}
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	token, err := codec.Encrypt(testIdentity())
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	identity := codec.Decrypt(token)
	if identity == nil {
		t.Fatal("Decrypt returned nil for a freshly issued token")
	}
	if identity.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", identity.UserID, "user-123")
	}
	if identity.Email != "a@b.com" {
		t.Errorf("Email = %q, want %q", identity.Email, "a@b.com")
	}
	if identity.Name != "テスト太郎" {
		t.Errorf("Name = %q, want %q", identity.Name, "テスト太郎")
	}
}

func TestTokenCodec_ExpiredToken_ReturnsNil(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	// 発行時刻を8日前に固定してトークンを作る
	issued := time.Now().Add(-8 * 24 * time.Hour)
	codec.now = func() time.Time { return issued }
	token, err := codec.Encrypt(testIdentity())
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// 現在時刻で検証すると期限切れ
	codec.now = time.Now
	if identity := codec.Decrypt(token); identity != nil {
		t.Error("期限切れトークンの検証が成功した")
	}
}

func TestTokenCodec_ValidJustBeforeExpiry(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	issued := time.Now()
	codec.now = func() time.Time { return issued }
	token, err := codec.Encrypt(testIdentity())
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// 期限1分前は有効
	codec.now = func() time.Time { return issued.Add(sessionTTL - time.Minute) }
	if codec.Decrypt(token) == nil {
		t.Error("期限内のトークンが無効と判定された")
	}

	// 期限を過ぎると無効（クロックスキュー許容分を超えて）
	codec.now = func() time.Time { return issued.Add(sessionTTL + time.Minute) }
	if codec.Decrypt(token) != nil {
		t.Error("期限後のトークンが有効と判定された")
	}
}

func TestTokenCodec_DifferentKey_ReturnsNil(t *testing.T) {
	token, err := NewTokenCodec("secret-a").Encrypt(testIdentity())
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if NewTokenCodec("secret-b").Decrypt(token) != nil {
		t.Error("異なる鍵で署名されたトークンの検証が成功した")
	}
}

func TestTokenCodec_MalformedToken_ReturnsNil(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"空文字列", ""},
		{"JWT形式ではない", "not-a-token"},
		{"セグメント不足", "aaaa.bbbb"},
		{"署名部の改ざん", func() string {
			tok, _ := codec.Encrypt(testIdentity())
			return tok[:len(tok)-4] + "xxxx"
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if codec.Decrypt(tt.token) != nil {
				t.Errorf("不正トークン %q の検証が成功した", tt.token)
			}
		})
	}
}

func TestTokenCodec_TTL_IsSevenDays(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	if codec.TTL() != 7*24*time.Hour {
		t.Errorf("TTL = %v, want 168h", codec.TTL())
	}
}
