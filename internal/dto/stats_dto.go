package dto

import "time"

// StatusBreakdownResponse carries the rolling percentage statistics shown on
// both the teacher and parent dashboards. Percentages are rounded half-up
// independently and may not sum to exactly 100.
type StatusBreakdownResponse struct {
	Present        int  `json:"present"`
	Late           int  `json:"late"`
	Absent         int  `json:"absent"`
	Total          int  `json:"total"`
	PresentPercent int  `json:"present_percent"`
	LatePercent    int  `json:"late_percent"`
	AbsentPercent  int  `json:"absent_percent"`
	CacheHit       bool `json:"cache_hit,omitempty"`
}

// MonthlyBucketResponse aggregates one calendar month of a trend range.
type MonthlyBucketResponse struct {
	Month   string `json:"month"`
	Present int    `json:"present"`
	Late    int    `json:"late"`
	Absent  int    `json:"absent"`
	Total   int    `json:"total"`
}

// TrendResponse is the six-month attendance trend, oldest month first.
type TrendResponse struct {
	Months      []MonthlyBucketResponse `json:"months"`
	GeneratedAt time.Time               `json:"generated_at"`
	CacheHit    bool                    `json:"cache_hit,omitempty"`
}
