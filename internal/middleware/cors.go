package middleware

import "net/http"

// NewCORSMiddleware はフロントエンドの単一オリジンからのAPI呼び出しを許可する
// ミドルウェアを返す。セッションCookie付きリクエストを受けるため許可オリジンは
// 設定された1つに固定し、ワイルドカードは使わない。共有キャッシュがオリジンを
// またいで応答を再利用しないようVary: Originを付与する。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Max-Age", "600")
			h.Add("Vary", "Origin")

			// プリフライトはここで完結させ、ルーティングに渡さない
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
