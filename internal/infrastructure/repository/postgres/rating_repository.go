package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/match-arena/internal/domain/rating"
	qb "github.com/riskibarqy/match-arena/internal/platform/querybuilder"
)

const playerRatingTable = "player_ratings"

var playerRatingColumns = []string{
	"player_id",
	"mu",
	"sigma",
	"games_recorded",
	"updated_at",
}

type RatingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) Get(ctx context.Context, playerID string) (rating.PlayerRating, bool, error) {
	query, args, err := qb.Select(playerRatingColumns...).
		From(playerRatingTable).
		Where(qb.Eq("player_id", playerID)).
		ToSQL()
	if err != nil {
		return rating.PlayerRating{}, false, crerr.Wrap(err, "build get player rating query")
	}

	var row playerRatingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return rating.PlayerRating{}, false, nil
		}
		return rating.PlayerRating{}, false, crerr.Wrapf(err, "get rating for player %s", playerID)
	}

	return playerRatingFromRow(row), true, nil
}

func (r *RatingRepository) Upsert(ctx context.Context, item rating.PlayerRating) error {
	query, args, err := qb.InsertInto(playerRatingTable).
		Columns(playerRatingColumns...).
		Values(item.PlayerID, item.Mu, item.Sigma, item.GamesRecorded, item.UpdatedAt.UTC()).
		Suffix(`ON CONFLICT (player_id) DO UPDATE SET
			mu = EXCLUDED.mu,
			sigma = EXCLUDED.sigma,
			games_recorded = EXCLUDED.games_recorded,
			updated_at = EXCLUDED.updated_at`).
		ToSQL()
	if err != nil {
		return crerr.Wrap(err, "build upsert player rating query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "upsert rating for player %s", item.PlayerID)
	}

	return nil
}

func (r *RatingRepository) List(ctx context.Context) ([]rating.PlayerRating, error) {
	query, args, err := qb.Select(playerRatingColumns...).
		From(playerRatingTable).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list player ratings query")
	}

	var rows []playerRatingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list player ratings")
	}

	out := make([]rating.PlayerRating, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerRatingFromRow(row))
	}
	return out, nil
}
