package models

import "time"

type Profile struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	TZOffsetMinutes int       `json:"tz_offset_minutes"`
	CreatedAt       time.Time `json:"created_at"`
}

type Deck struct {
	ID        int64     `json:"id"`
	ProfileID int64     `json:"profile_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
