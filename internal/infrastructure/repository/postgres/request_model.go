package postgres

import (
	"time"

	"github.com/riskibarqy/match-arena/internal/domain/matchrequest"
)

type matchRequestTableModel struct {
	ID               int64      `db:"id"`
	PublicID         string     `db:"public_id"`
	CreatedByUserID  string     `db:"created_by_user_id"`
	GameID           string     `db:"game_id"`
	TeamSize         int        `db:"team_size"`
	EntryFee         *int64     `db:"entry_fee"`
	Region           string     `db:"region"`
	MatchType        string     `db:"match_type"`
	SkillLevel       string     `db:"skill_level"`
	ScheduledAt      time.Time  `db:"scheduled_at"`
	Status           string     `db:"status"`
	AcceptedByUserID *string    `db:"accepted_by_user_id"`
	CreatedAt        time.Time  `db:"created_at"`
	ResolvedAt       *time.Time `db:"resolved_at"`
}

func matchRequestFromRow(row matchRequestTableModel) matchrequest.MatchRequest {
	return matchrequest.MatchRequest{
		ID:               row.PublicID,
		CreatedByUserID:  row.CreatedByUserID,
		GameID:           row.GameID,
		TeamSize:         row.TeamSize,
		EntryFee:         row.EntryFee,
		Region:           row.Region,
		MatchType:        row.MatchType,
		SkillLevel:       row.SkillLevel,
		ScheduledAt:      row.ScheduledAt.UTC(),
		Status:           matchrequest.Status(row.Status),
		AcceptedByUserID: row.AcceptedByUserID,
		CreatedAt:        row.CreatedAt.UTC(),
		ResolvedAt:       utcTimePtr(row.ResolvedAt),
	}
}

func utcTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
}
