package model

import "time"

// WeightEntry は体重の記録を表す。
type WeightEntry struct {
	ID         string
	UserID     string
	WeightKg   float64
	RecordedAt time.Time
	CreatedAt  time.Time
}

// ProgressSummary は期間内の進捗サマリーを表す。
type ProgressSummary struct {
	From            time.Time
	To              time.Time
	WorkoutCount    int
	TotalCalories   float64
	StartWeightKg   float64
	LatestWeightKg  float64
	WeightChangeKg  float64
}
