package domain

// User is one row of the shared users table. Timestamps are unix seconds.
type User struct {
	UserID    int64  `db:"user_id" json:"user_id"`
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Language  string `db:"language" json:"language"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
	LastSeen  int64  `db:"last_seen" json:"last_seen"`

	WinChance float64 `db:"win_chance" json:"win_chance"`
	GenLevel  int64   `db:"gen_level" json:"gen_level"`

	BalMMC   float64 `db:"bal_mmc" json:"bal_mmc"`
	BalTON   float64 `db:"bal_ton" json:"bal_ton"`
	BalUSDT  float64 `db:"bal_usdt" json:"bal_usdt"`
	BalStars float64 `db:"bal_stars" json:"bal_stars"`

	MinutesInApp   int64  `db:"minutes_in_app" json:"minutes_in_app"`
	WalletStatus   string `db:"wallet_status" json:"wallet_status"`
	WalletAddress  string `db:"wallet_address" json:"wallet_address"`
	TWalletSeconds int64  `db:"t_wallet_seconds" json:"t_wallet_seconds"`
	TSeedSeconds   int64  `db:"t_seed_seconds" json:"t_seed_seconds"`
}

// Identity carries the profile fields refreshed on every touch.
type Identity struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Language  string `json:"language"`
}

// Event is a recorded interaction: minutes accumulate, wallet fields
// overwrite only when non-empty.
type Event struct {
	MinutesDelta  int64  `json:"minutes_delta"`
	WalletAddress string `json:"wallet_address"`
	WalletStatus  string `json:"wallet_status"`
}
