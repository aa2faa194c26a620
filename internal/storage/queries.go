package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"scrimtally/internal/model"
)

// SaveRoster stores a roster and its teams in one transaction.
func (db *DB) SaveRoster(r *model.Roster) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO rosters(id, group_name, created_at) VALUES (?, ?, ?)`,
		r.ID, r.GroupName, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert roster %s: %w", r.ID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO roster_teams(roster_id, slot, name, players) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range r.Teams {
		players, err := json.Marshal(t.Players)
		if err != nil {
			return fmt.Errorf("encode players for %q: %w", t.Name, err)
		}
		if _, err := stmt.Exec(r.ID, t.Slot, t.Name, string(players)); err != nil {
			return fmt.Errorf("insert team %q: %w", t.Name, err)
		}
	}
	return tx.Commit()
}

// GetRoster loads a roster by ID, teams in slot order. Returns nil when no
// roster matches.
func (db *DB) GetRoster(id string) (*model.Roster, error) {
	r := &model.Roster{ID: id}
	err := db.conn.QueryRow(`SELECT group_name FROM rosters WHERE id = ?`, id).Scan(&r.GroupName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(`SELECT slot, name, players FROM roster_teams WHERE roster_id = ? ORDER BY slot, name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t model.Team
		var players string
		if err := rows.Scan(&t.Slot, &t.Name, &players); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(players), &t.Players); err != nil {
			return nil, fmt.Errorf("decode players for %q: %w", t.Name, err)
		}
		r.Teams = append(r.Teams, t)
	}
	return r, rows.Err()
}

// ListRosters returns stored rosters newest first, with Teams sized to the
// stored team count but not populated.
func (db *DB) ListRosters() ([]model.Roster, error) {
	rows, err := db.conn.Query(`
		SELECT r.id, r.group_name, COUNT(t.name)
		FROM rosters r LEFT JOIN roster_teams t ON t.roster_id = r.id
		GROUP BY r.id ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Roster
	for rows.Next() {
		var r model.Roster
		var teamCount int
		if err := rows.Scan(&r.ID, &r.GroupName, &teamCount); err != nil {
			return nil, err
		}
		r.Teams = make([]model.Team, teamCount)
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertAggregation stores one finished aggregation. The (match_id,
// namespace) uniqueness constraint makes this the idempotency guard: a
// second insert for the same pair returns ErrDuplicateMatch and writes
// nothing, even when two processes race.
func (db *DB) InsertAggregation(rec model.AggregationRecord) error {
	_, err := db.conn.Exec(`
		INSERT INTO aggregations(match_id, namespace, group_name, total_matches,
			winner, winner_points, team_count, csv, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.MatchID, rec.Namespace, rec.GroupName, rec.TotalMatches,
		rec.Winner, rec.WinnerPoints, rec.TeamCount, rec.CSV, rec.Summary,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%s in namespace %s: %w", rec.MatchID, rec.Namespace, ErrDuplicateMatch)
		}
		return fmt.Errorf("insert aggregation %s: %w", rec.MatchID, err)
	}
	return nil
}

// AggregationExists reports whether a result is already stored for the
// (match identifier, namespace) pair.
func (db *DB) AggregationExists(matchID, namespace string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(1) FROM aggregations WHERE match_id = ? AND namespace = ?`,
		matchID, namespace).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetAggregation loads a stored aggregation. Returns nil when none matches.
func (db *DB) GetAggregation(matchID, namespace string) (*model.AggregationRecord, error) {
	var rec model.AggregationRecord
	err := db.conn.QueryRow(`
		SELECT match_id, namespace, group_name, total_matches, winner,
		       winner_points, team_count, csv, summary, created_at
		FROM aggregations WHERE match_id = ? AND namespace = ?`, matchID, namespace).
		Scan(&rec.MatchID, &rec.Namespace, &rec.GroupName, &rec.TotalMatches,
			&rec.Winner, &rec.WinnerPoints, &rec.TeamCount, &rec.CSV,
			&rec.Summary, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListAggregations returns stored aggregations, newest first, without the
// CSV/summary bodies.
func (db *DB) ListAggregations() ([]model.AggregationRecord, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, namespace, group_name, total_matches, winner,
		       winner_points, team_count, created_at
		FROM aggregations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AggregationRecord
	for rows.Next() {
		var rec model.AggregationRecord
		if err := rows.Scan(&rec.MatchID, &rec.Namespace, &rec.GroupName,
			&rec.TotalMatches, &rec.Winner, &rec.WinnerPoints,
			&rec.TeamCount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
