// Package nutritiondb は外部栄養データベースAPIとの連携機能を提供する。
// 食品名からカロリー・タンパク質・炭水化物・脂質を検索する。
package nutritiondb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/hitoshi/fitlog/internal/model"
)

const (
	// maxQueryLength は検索クエリの最大文字数。
	maxQueryLength = 200
	// burstSize はレートリミッタのバースト許容量。
	burstSize = 1
)

// Client は栄養データベースAPIのクライアント。
// 外部APIの利用規約に合わせて送信レートを制限する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter
	endpoint   string
	apiKey     string
}

// SearchResult は栄養データベースAPIの検索結果1件。
type SearchResult struct {
	FoodName  string               `json:"food_name"`
	Nutrition model.NutritionFacts `json:"nutrition"`
}

// searchResponse はAPIレスポンスのエンベロープ。
type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// NewClient はClientの新しいインスタンスを生成する。
// maxRPS は1秒あたりの最大リクエスト数。
func NewClient(httpClient *http.Client, logger *slog.Logger, endpoint, apiKey string, maxRPS float64) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(maxRPS), burstSize),
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

// Enabled はクライアントが利用可能な設定かどうかを返す。
// エンドポイント未設定時は検索機能を無効として扱う。
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

// Search は食品名で栄養情報を検索する。
// レートリミッタの許可を待ってからリクエストを送信する。
// コンテキストがキャンセルされた場合は待機を中断してエラーを返す。
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("栄養データベースAPIが設定されていません")
	}
	if query == "" {
		return []SearchResult{}, nil
	}
	if len(query) > maxQueryLength {
		return nil, fmt.Errorf("検索クエリが長すぎます: %d > %d", len(query), maxQueryLength)
	}

	// 送信レートの制限（外部APIのクォータ保護）
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("レートリミッタの待機が中断されました: %w", err)
	}

	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}
	q := reqURL.Query()
	q.Set("query", query)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "Fitlog/1.0")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("栄養データベースAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("query", query),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("栄養データベースAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("query", query),
		)
		return nil, fmt.Errorf("栄養データベースAPIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error("栄養データベースAPIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	if result.Results == nil {
		return []SearchResult{}, nil
	}
	return result.Results, nil
}
