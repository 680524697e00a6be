package aiplan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/fitlog/internal/model"
)

// Completer はプラン本文生成のためのLLM呼び出しインターフェース。
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// コンパイル時のインターフェース実装チェック
var _ Completer = (*Client)(nil)

// Generator は目標と直近の記録からプラン本文を生成する。
type Generator struct {
	llm    Completer
	logger *slog.Logger
}

// NewGenerator はGenerator の新しいインスタンスを生成する。
func NewGenerator(llm Completer, logger *slog.Logger) *Generator {
	return &Generator{
		llm:    llm,
		logger: logger,
	}
}

const systemPrompt = "あなたはフィットネストレーナーです。" +
	"ユーザーの目標と現在の体重から、1週間分のトレーニングと食事のプランを" +
	"Markdown形式で簡潔に作成してください。"

// Generate はプラン本文を生成し、本文と生成元を返す。
// LLM APIが使えない場合・失敗した場合はテンプレートにフォールバックする。
func (g *Generator) Generate(ctx context.Context, goal model.PlanGoal, latestWeightKg float64) (string, model.PlanSource) {
	if g.llm != nil && g.llm.Enabled() {
		userPrompt := fmt.Sprintf("目標: %s", goal)
		if latestWeightKg > 0 {
			userPrompt += fmt.Sprintf("\n現在の体重: %.1fkg", latestWeightKg)
		}

		content, err := g.llm.Complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			return content, model.PlanSourceLLM
		}
		g.logger.Warn("LLMでのプラン生成に失敗したためテンプレートを使用します",
			slog.String("error", err.Error()),
			slog.String("goal", string(goal)),
		)
	}

	return RenderTemplate(goal, latestWeightKg), model.PlanSourceTemplate
}
