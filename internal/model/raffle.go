package model

import "time"

type EnterRequest struct {
	Participant string `json:"participant"`
	Value       string `json:"value"`
}

type EnterResponse struct{}

type GetRaffleRequest struct{}

type GetRaffleResponse struct {
	EntranceFee      string    `json:"entrance_fee"`
	Interval         int64     `json:"interval"`
	State            string    `json:"state"`
	Players          []string  `json:"players"`
	NumberOfPlayers  int       `json:"number_of_players"`
	Balance          string    `json:"balance"`
	LastTimestamp    time.Time `json:"last_timestamp"`
	RecentWinner     string    `json:"recent_winner"`
	PendingRequestID string    `json:"pending_request_id,omitempty"`
}

type GetPlayerRequest struct {
	Index int `form:"index" json:"index"`
}

type GetPlayerResponse struct {
	Player string `json:"player"`
}

type CheckUpkeepRequest struct{}

type CheckUpkeepResponse struct {
	UpkeepNeeded bool `json:"upkeep_needed"`
}

type ForceResetRequest struct{}

type ForceResetResponse struct{}

type GetWinnerLeaderboardRequest struct {
	Offset int `form:"offset" json:"offset"`
	Limit  int `form:"limit" json:"limit"`
}

type WinnerRank struct {
	Winner string `json:"winner"`
	Wins   int64  `json:"wins"`
}

type GetWinnerLeaderboardResponse struct {
	Winners []WinnerRank `json:"winners"`
}

type GetRecentWinnersRequest struct {
	Limit int `form:"limit" json:"limit"`
}

type RecentWinner struct {
	RequestID string    `json:"request_id"`
	Winner    string    `json:"winner"`
	Prize     string    `json:"prize"`
	PickedAt  time.Time `json:"picked_at"`
}

type GetRecentWinnersResponse struct {
	Winners []RecentWinner `json:"winners"`
}
