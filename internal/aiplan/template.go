package aiplan

import (
	"fmt"
	"strings"

	"github.com/hitoshi/fitlog/internal/model"
)

// templatePlan は目標ごとの組み込みプランテンプレート。
// LLM API未設定時および呼び出し失敗時に使用する。
var templatePlans = map[model.PlanGoal]struct {
	title    string
	workouts []string
	meals    []string
}{
	model.PlanGoalLoseWeight: {
		title: "減量プラン（週次）",
		workouts: []string{
			"月: 有酸素運動 30分（ジョギングまたはバイク）",
			"水: 全身筋トレ（スクワット・プッシュアップ・プランク 各3セット）",
			"金: 有酸素運動 40分 + 体幹トレーニング",
			"日: ウォーキング 60分",
		},
		meals: []string{
			"摂取カロリーは消費カロリーの約85%を目安にする",
			"タンパク質を体重1kgあたり1.6g以上確保する",
			"夕食の炭水化物を控えめにし、野菜を先に食べる",
		},
	},
	model.PlanGoalGainMuscle: {
		title: "増量プラン（週次）",
		workouts: []string{
			"月: 上半身プッシュ（ベンチプレス・ショルダープレス 各4セット）",
			"火: 下半身（スクワット・デッドリフト 各4セット）",
			"木: 上半身プル（懸垂・ローイング 各4セット）",
			"土: 弱点部位 + 有酸素運動 20分",
		},
		meals: []string{
			"摂取カロリーは消費カロリーの約110%を目安にする",
			"タンパク質を体重1kgあたり2.0gを目標に毎食分散して摂る",
			"トレーニング後30分以内に炭水化物とタンパク質を補給する",
		},
	},
	model.PlanGoalMaintain: {
		title: "維持プラン（週次）",
		workouts: []string{
			"月: 全身筋トレ（コンパウンド種目中心 各3セット）",
			"水: 有酸素運動 30分",
			"金: 全身筋トレ + ストレッチ 15分",
		},
		meals: []string{
			"摂取カロリーと消費カロリーをほぼ均衡させる",
			"タンパク質を体重1kgあたり1.4g以上確保する",
			"週1回は食事記録を見直し、偏りを調整する",
		},
	},
}

// RenderTemplate は目標に応じた組み込みプラン本文を生成する。
// 未知の目標にはmaintainのテンプレートを使用する。
func RenderTemplate(goal model.PlanGoal, latestWeightKg float64) string {
	tpl, ok := templatePlans[goal]
	if !ok {
		tpl = templatePlans[model.PlanGoalMaintain]
	}

	var b strings.Builder
	b.WriteString("# " + tpl.title + "\n\n")
	if latestWeightKg > 0 {
		fmt.Fprintf(&b, "現在の体重: %.1fkg\n\n", latestWeightKg)
	}
	b.WriteString("## トレーニング\n")
	for _, w := range tpl.workouts {
		b.WriteString("- " + w + "\n")
	}
	b.WriteString("\n## 食事\n")
	for _, m := range tpl.meals {
		b.WriteString("- " + m + "\n")
	}
	return b.String()
}
