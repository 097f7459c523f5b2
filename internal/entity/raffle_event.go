package entity

import "time"

// RaffleEvent is one published raffle event. The ID is the snowflake id given
// by the publisher, so a redelivered message maps to the same row.
type RaffleEvent struct {
	SnowFlakeBase

	Type      string `gorm:"index"`
	Player    string
	RequestID string `gorm:"index"`
	Winner    string
	Prize     string
	EmittedAt time.Time
}

// RaffleWinner is one resolved draw.
type RaffleWinner struct {
	Base

	EventID   int64  `gorm:"uniqueIndex"`
	RequestID string `gorm:"index"`
	Winner    string `gorm:"index"`
	Prize     string
	PickedAt  time.Time
}
