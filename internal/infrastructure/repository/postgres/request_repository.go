package postgres

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/match-arena/internal/domain/matchrequest"
	qb "github.com/riskibarqy/match-arena/internal/platform/querybuilder"
)

const matchRequestTable = "match_requests"

var matchRequestColumns = []string{
	"id",
	"public_id",
	"created_by_user_id",
	"game_id",
	"team_size",
	"entry_fee",
	"region",
	"match_type",
	"skill_level",
	"scheduled_at",
	"status",
	"accepted_by_user_id",
	"created_at",
	"resolved_at",
}

type RequestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func requestBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select(matchRequestColumns...).From(matchRequestTable)
}

func (r *RequestRepository) Create(ctx context.Context, item matchrequest.MatchRequest) error {
	query, args, err := qb.InsertInto(matchRequestTable).
		Columns(
			"public_id",
			"created_by_user_id",
			"game_id",
			"team_size",
			"entry_fee",
			"region",
			"match_type",
			"skill_level",
			"scheduled_at",
			"status",
			"created_at",
		).
		Values(
			item.ID,
			item.CreatedByUserID,
			item.GameID,
			item.TeamSize,
			item.EntryFee,
			item.Region,
			item.MatchType,
			item.SkillLevel,
			item.ScheduledAt.UTC(),
			string(item.Status),
			item.CreatedAt.UTC(),
		).
		ToSQL()
	if err != nil {
		return crerr.Wrap(err, "build insert match request query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "insert match request %s", item.ID)
	}

	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, requestID string) (matchrequest.MatchRequest, bool, error) {
	query, args, err := requestBaseSelectBuilder().
		Where(qb.Eq("public_id", requestID)).
		ToSQL()
	if err != nil {
		return matchrequest.MatchRequest{}, false, crerr.Wrap(err, "build get match request query")
	}

	var row matchRequestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchrequest.MatchRequest{}, false, nil
		}
		return matchrequest.MatchRequest{}, false, crerr.Wrapf(err, "get match request %s", requestID)
	}

	return matchRequestFromRow(row), true, nil
}

// ListOpen sweeps past-due Open rows to Expired, then snapshots the rest in
// insertion order.
func (r *RequestRepository) ListOpen(ctx context.Context, now time.Time) ([]matchrequest.MatchRequest, error) {
	if _, err := r.SweepExpired(ctx, now); err != nil {
		return nil, err
	}

	query, args, err := requestBaseSelectBuilder().
		Where(qb.Eq("status", string(matchrequest.StatusOpen))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list open match requests query")
	}

	var rows []matchRequestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list open match requests")
	}

	out := make([]matchrequest.MatchRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchRequestFromRow(row))
	}
	return out, nil
}

// Accept is a single conditional UPDATE: the row transitions only when it is
// still open and the acceptor is not the creator. Zero rows means the caller
// lost, and a follow-up read classifies why.
func (r *RequestRepository) Accept(ctx context.Context, requestID, acceptorID string, now time.Time) (matchrequest.MatchRequest, bool, error) {
	query, args, err := qb.Update(matchRequestTable).
		Set("status", string(matchrequest.StatusAccepted)).
		Set("accepted_by_user_id", acceptorID).
		Set("resolved_at", now.UTC()).
		Where(
			qb.Eq("public_id", requestID),
			qb.Eq("status", string(matchrequest.StatusOpen)),
			qb.Neq("created_by_user_id", acceptorID),
		).
		Suffix("RETURNING " + columnList(matchRequestColumns)).
		ToSQL()
	if err != nil {
		return matchrequest.MatchRequest{}, false, crerr.Wrap(err, "build accept match request query")
	}

	var row matchRequestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return r.classifyAcceptFailure(ctx, requestID, acceptorID)
		}
		return matchrequest.MatchRequest{}, false, crerr.Wrapf(err, "accept match request %s", requestID)
	}

	return matchRequestFromRow(row), true, nil
}

func (r *RequestRepository) classifyAcceptFailure(ctx context.Context, requestID, acceptorID string) (matchrequest.MatchRequest, bool, error) {
	current, exists, err := r.GetByID(ctx, requestID)
	if err != nil {
		return matchrequest.MatchRequest{}, false, err
	}
	if !exists {
		return matchrequest.MatchRequest{}, false, nil
	}
	if current.Status != matchrequest.StatusOpen {
		return matchrequest.MatchRequest{}, true, matchrequest.ErrAlreadyResolved
	}
	if current.CreatedByUserID == acceptorID {
		return matchrequest.MatchRequest{}, true, matchrequest.ErrSelfAccept
	}

	// The row was open and acceptable when re-read; the only way the UPDATE
	// matched nothing is a transition that has since been rolled back.
	return matchrequest.MatchRequest{}, true, matchrequest.ErrAlreadyResolved
}

func (r *RequestRepository) Cancel(ctx context.Context, requestID, callerID string, now time.Time) (matchrequest.MatchRequest, bool, error) {
	query, args, err := qb.Update(matchRequestTable).
		Set("status", string(matchrequest.StatusCancelled)).
		Set("resolved_at", now.UTC()).
		Where(
			qb.Eq("public_id", requestID),
			qb.Eq("status", string(matchrequest.StatusOpen)),
			qb.Eq("created_by_user_id", callerID),
		).
		Suffix("RETURNING " + columnList(matchRequestColumns)).
		ToSQL()
	if err != nil {
		return matchrequest.MatchRequest{}, false, crerr.Wrap(err, "build cancel match request query")
	}

	var row matchRequestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return r.classifyCancelFailure(ctx, requestID, callerID)
		}
		return matchrequest.MatchRequest{}, false, crerr.Wrapf(err, "cancel match request %s", requestID)
	}

	return matchRequestFromRow(row), true, nil
}

func (r *RequestRepository) classifyCancelFailure(ctx context.Context, requestID, callerID string) (matchrequest.MatchRequest, bool, error) {
	current, exists, err := r.GetByID(ctx, requestID)
	if err != nil {
		return matchrequest.MatchRequest{}, false, err
	}
	if !exists {
		return matchrequest.MatchRequest{}, false, nil
	}
	if current.CreatedByUserID != callerID {
		return matchrequest.MatchRequest{}, true, matchrequest.ErrNotOwner
	}

	return matchrequest.MatchRequest{}, true, matchrequest.ErrAlreadyResolved
}

func (r *RequestRepository) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	query, args, err := qb.Update(matchRequestTable).
		Set("status", string(matchrequest.StatusExpired)).
		Set("resolved_at", now.UTC()).
		Where(
			qb.Eq("status", string(matchrequest.StatusOpen)),
			qb.Expr("scheduled_at <= ?", now.UTC()),
		).
		ToSQL()
	if err != nil {
		return 0, crerr.Wrap(err, "build sweep expired query")
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, crerr.Wrap(err, "sweep expired match requests")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, crerr.Wrap(err, "count swept match requests")
	}

	return int(affected), nil
}

func (r *RequestRepository) CountByStatus(ctx context.Context) (map[matchrequest.Status]int, error) {
	query, args, err := qb.Select("status", "COUNT(*) AS total").
		From(matchRequestTable).
		GroupBy("status").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build count by status query")
	}

	var rows []struct {
		Status string `db:"status"`
		Total  int    `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "count match requests by status")
	}

	counts := make(map[matchrequest.Status]int, len(rows))
	for _, row := range rows {
		counts[matchrequest.Status(row.Status)] = row.Total
	}
	return counts, nil
}

func columnList(columns []string) string {
	return strings.Join(columns, ", ")
}
