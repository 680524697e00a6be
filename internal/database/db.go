package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// 接続プール設定。単一バイナリのAPIサーバーがワーカーを持たない構成のため、
// 同時接続は控えめに絞り、LBやプロキシ側のアイドル切断より先に
// コネクションを入れ替える。
const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

// Open はPostgreSQLへの接続プールを開き、プール設定を適用して返す。
// sql.Openは遅延接続のため実際には接続しない。到達確認が必要な場面では
// 呼び出し側がdb.PingContextを使うこと。
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	return db, nil
}
