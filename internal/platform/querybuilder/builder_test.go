package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("league_id", "user_id", "matchday").
		From("points").
		Where(Eq("league_id", int64(7)), IsNull("finalized_at")).
		OrderBy("user_id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT league_id, user_id, matchday FROM points WHERE league_id = $1 AND finalized_at IS NULL ORDER BY user_id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != int64(7) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ExprPlaceholders(t *testing.T) {
	query, args, err := Select("club").
		From("club_results").
		Where(
			Eq("league_type", "Bundesliga"),
			Expr("archived_at IS NOT NULL AND archived_at >= ?", int64(1700000000)),
			Expr("club = ANY(?) OR opponent = ?", "FCB", "BVB", "ignored"),
		).
		OrderBy("club").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT club FROM club_results WHERE league_type = $1 AND archived_at IS NOT NULL AND archived_at >= $2 AND club = ANY($3) OR opponent = $4 ORDER BY club"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[3] != "BVB" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("kv_state").
		Columns("key", "value").
		Values("lockedBundesliga", "1700000000").
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO kv_state (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "lockedBundesliga" || args[1] != "1700000000" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("league_users").
		Set("fantasy_points", 40).
		SetExpr("points", "? + prediction_points", 40).
		Where(Eq("league_id", int64(1)), Eq("user_id", int64(2))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE league_users SET fantasy_points = $1, points = $2 + prediction_points WHERE league_id = $3 AND user_id = $4"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != 40 || args[1] != 40 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("kv_state").Where(Eq("key", "lockedBundesliga")).ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}
	if query != "DELETE FROM kv_state WHERE key = $1" || len(args) != 1 {
		t.Fatalf("unexpected delete: %s %+v", query, args)
	}

	if _, _, err := DeleteFrom("kv_state").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional delete")
	}
}

func TestInsertModel(t *testing.T) {
	type slot struct {
		LeagueID  int64  `db:"league_id"`
		PlayerUID string `db:"player_uid"`
		Ignored   string `db:"-"`
	}

	query, args, err := InsertModel("squad_slots", slot{LeagueID: 1, PlayerUID: "p1"}, "")
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}
	if query != "INSERT INTO squad_slots (league_id, player_uid) VALUES ($1, $2)" || len(args) != 2 {
		t.Fatalf("unexpected insert: %s %+v", query, args)
	}
}

func TestInsertModels_MultiRow(t *testing.T) {
	type pointsRow struct {
		LeagueID int64 `db:"league_id"`
		UserID   int64 `db:"user_id"`
		Points   int   `db:"points"`
		note     string
	}

	rows := []*pointsRow{
		{LeagueID: 3, UserID: 10, Points: 0},
		{LeagueID: 3, UserID: 11, Points: 4},
	}
	query, args, err := InsertModels("points", rows, "ON CONFLICT DO NOTHING")
	if err != nil {
		t.Fatalf("insert models: %v", err)
	}

	want := "INSERT INTO points (league_id, user_id, points) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT DO NOTHING"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 6 || args[3] != int64(3) || args[5] != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModels_Errors(t *testing.T) {
	t.Parallel()

	type a struct {
		ID int64 `db:"id"`
	}
	type b struct {
		ID int64 `db:"id"`
	}
	type untagged struct {
		ID int64
	}

	tests := []struct {
		name   string
		models []any
	}{
		{name: "empty", models: nil},
		{name: "mixed types", models: []any{a{ID: 1}, b{ID: 2}}},
		{name: "nil pointer", models: []any{(*a)(nil)}},
		{name: "not a struct", models: []any{42}},
		{name: "no columns", models: []any{untagged{ID: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, _, err := InsertModels("t", tt.models, ""); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestColumnsOf(t *testing.T) {
	t.Parallel()

	type leagueRow struct {
		ID         int64  `db:"id"`
		Name       string `db:"name, omitempty"`
		Skipped    bool   `db:"-"`
		NoTag      int
		LeagueType string `db:"league_type"`
	}

	got := ColumnsOf(&leagueRow{})
	want := []string{"id", "name", "league_type"}
	if len(got) != len(want) {
		t.Fatalf("unexpected columns: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected column %d: got=%s want=%s", i, got[i], want[i])
		}
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for non-struct model")
		}
	}()
	ColumnsOf("league")
}
