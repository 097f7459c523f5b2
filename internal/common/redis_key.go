package common

const (
	RedisKeyWinnerLeaderboard = "raffle:winners"
	RedisKeyLastIndexedEvent  = "raffle:last_indexed_event"
)
