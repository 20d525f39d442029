package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := Select("*").
		From("match_requests").
		Where(Eq("status", "open"), Lt("scheduled_at_utc", "2026-01-01")).
		OrderBy("created_at_utc ASC").
		Limit(10).
		ToSQL()

	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM match_requests WHERE status = $1 AND scheduled_at_utc < $2 ORDER BY created_at_utc ASC LIMIT 10", query)
	assert.Equal(t, []any{"open", "2026-01-01"}, args)
}

func TestSelectBuilder_GroupBy(t *testing.T) {
	t.Parallel()

	query, args, err := Select("status", "COUNT(*) AS total").
		From("match_requests").
		GroupBy("status").
		ToSQL()

	require.NoError(t, err)
	assert.Equal(t, "SELECT status, COUNT(*) AS total FROM match_requests GROUP BY status", query)
	assert.Empty(t, args)
}

func TestSelectBuilder_RequiresTableAndColumns(t *testing.T) {
	t.Parallel()

	_, _, err := Select().From("t").ToSQL()
	assert.Error(t, err)

	_, _, err = Select("*").ToSQL()
	assert.Error(t, err)
}

func TestInsertBuilder_WithSuffix(t *testing.T) {
	t.Parallel()

	query, args, err := InsertInto("player_ratings").
		Columns("player_id", "mu", "sigma").
		Values("p1", 25.0, 8.333).
		Suffix("ON CONFLICT (player_id) DO UPDATE SET mu = ?, sigma = ?").
		ToSQL()

	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO player_ratings (player_id, mu, sigma) VALUES ($1, $2, $3) ON CONFLICT (player_id) DO UPDATE SET mu = $4, sigma = $5", query)
	assert.Len(t, args, 3)
}

func TestInsertBuilder_RowArityMismatch(t *testing.T) {
	t.Parallel()

	_, _, err := InsertInto("t").Columns("a", "b").Values("only-one").ToSQL()
	assert.Error(t, err)
}

func TestUpdateBuilder_ConditionalTransition(t *testing.T) {
	t.Parallel()

	query, args, err := Update("match_requests").
		Set("status", "accepted").
		Set("accepted_by_user_id", "u2").
		Where(
			Eq("public_id", "req-1"),
			Eq("status", "open"),
			Neq("created_by_user_id", "u2"),
		).
		Suffix("RETURNING *").
		ToSQL()

	require.NoError(t, err)
	assert.Equal(t, "UPDATE match_requests SET status = $1, accepted_by_user_id = $2 WHERE public_id = $3 AND status = $4 AND created_by_user_id <> $5 RETURNING *", query)
	assert.Equal(t, []any{"accepted", "u2", "req-1", "open", "u2"}, args)
}

func TestExprCondition(t *testing.T) {
	t.Parallel()

	query, args, err := Select("*").
		From("match_requests").
		Where(Expr("scheduled_at_utc < ? AND status = ?", "2026-01-01", "open")).
		ToSQL()

	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM match_requests WHERE scheduled_at_utc < $1 AND status = $2", query)
	assert.Equal(t, []any{"2026-01-01", "open"}, args)
}
