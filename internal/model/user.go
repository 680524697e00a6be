// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashは "salt:hash" 形式で連結して保持する。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity は認証済みユーザーの識別情報を表す。
// セッショントークンのペイロードとして署名付きで持ち回る最小集合。
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// IdentityFromUser はUserからトークンに載せるIdentityを抽出する。
func IdentityFromUser(u *User) Identity {
	return Identity{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
	}
}
