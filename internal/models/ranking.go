package models

import "time"

// DailyRanking is one submitted score. Username and avatar are copied from the
// profile at submission time.
type DailyRanking struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Level      int       `json:"level"`
	Score      int       `json:"score"`
	Username   string    `json:"username"`
	AvatarIcon string    `json:"avatar_icon"`
	CreatedAt  time.Time `json:"created_at"`
}

// DailyStats summarises a player's last 24 hours
type DailyStats struct {
	LevelsCompleted int `json:"levelsCompleted"`
	TotalScore      int `json:"totalScore"`
	HighestLevel    int `json:"highestLevel"`
}

// PendingScore is the single score an anonymous player may carry into sign-up
type PendingScore struct {
	Level int `json:"level"`
	Score int `json:"score"`
}
