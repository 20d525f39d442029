package postgres

import (
	"time"

	"github.com/riskibarqy/match-arena/internal/domain/rating"
)

type playerRatingTableModel struct {
	PlayerID      string    `db:"player_id"`
	Mu            float64   `db:"mu"`
	Sigma         float64   `db:"sigma"`
	GamesRecorded int       `db:"games_recorded"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func playerRatingFromRow(row playerRatingTableModel) rating.PlayerRating {
	return rating.PlayerRating{
		PlayerID:      row.PlayerID,
		Mu:            row.Mu,
		Sigma:         row.Sigma,
		GamesRecorded: row.GamesRecorded,
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}
