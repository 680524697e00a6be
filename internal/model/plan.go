package model

import "time"

// PlanGoal はプラン生成の目標を表す。
type PlanGoal string

const (
	PlanGoalLoseWeight PlanGoal = "lose_weight"
	PlanGoalGainMuscle PlanGoal = "gain_muscle"
	PlanGoalMaintain   PlanGoal = "maintain"
)

// IsValid は定義済みの目標かどうかを判定する。
func (g PlanGoal) IsValid() bool {
	switch g {
	case PlanGoalLoseWeight, PlanGoalGainMuscle, PlanGoalMaintain:
		return true
	default:
		return false
	}
}

// Plan は生成されたトレーニング・食事プランを表す。
// ContentはLLM APIまたはテンプレートが生成したプラン本文。
type Plan struct {
	ID        string
	UserID    string
	Goal      PlanGoal
	Content   string
	Source    PlanSource
	CreatedAt time.Time
}

// PlanSource はプラン本文の生成元を表す。
type PlanSource string

const (
	// PlanSourceLLM はLLM APIが生成したことを示す。
	PlanSourceLLM PlanSource = "llm"
	// PlanSourceTemplate は組み込みテンプレートから生成したことを示す。
	// LLM API未設定時および呼び出し失敗時のフォールバック。
	PlanSourceTemplate PlanSource = "template"
)
