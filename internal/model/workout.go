package model

import "time"

// Workout は1回のトレーニング記録を表す。
type Workout struct {
	ID          string
	UserID      string
	PerformedAt time.Time
	Notes       string
	Exercises   []Exercise
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Exercise はトレーニング内の1種目を表す。
type Exercise struct {
	ID        string
	WorkoutID string
	Name      string
	Sets      int
	Reps      int
	WeightKg  float64
	CreatedAt time.Time
}
