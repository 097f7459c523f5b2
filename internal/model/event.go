package model

import "time"

// RaffleEvent is the wire form of a raffle event, on kafka and on the
// websocket stream. Data holds one of the *Data structs below, keyed by their
// structs tags.
type RaffleEvent struct {
	ID   int64          `json:"id"`
	Type string         `json:"type"`
	Time time.Time      `json:"time"`
	Data map[string]any `json:"data"`
}

type RaffleEnterData struct {
	Player string `mapstructure:"player" structs:"player"`
}

type RequestedRaffleWinnerData struct {
	RequestID string `mapstructure:"request_id" structs:"request_id"`
}

type WinnerPickedData struct {
	RequestID string `mapstructure:"request_id" structs:"request_id"`
	Winner    string `mapstructure:"winner" structs:"winner"`
	Prize     string `mapstructure:"prize" structs:"prize"`
}

type RaffleResetData struct {
	RequestID string `mapstructure:"request_id" structs:"request_id"`
}

// OperatorToken is the payload of the bearer token accepted by operator-only
// endpoints.
type OperatorToken struct {
	Address string `json:"address"`
}
