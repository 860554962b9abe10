package server

import (
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"onenight/game"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS games (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_code TEXT NOT NULL,
	outcome TEXT NOT NULL,
	winners TEXT NOT NULL,
	eliminated TEXT NOT NULL,
	player_count INTEGER NOT NULL,
	finished_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_games_finished_at ON games(finished_at);
`

// History is the permanent record of finished games.
type History struct {
	db *sql.DB
}

// HistoryEntry is one finished game. Winners and Eliminated hold player
// names, not ids, since the ids die with the session.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	RoomCode    string    `json:"roomCode"`
	Outcome     string    `json:"outcome"`
	Winners     []string  `json:"winners"`
	Eliminated  []string  `json:"eliminated"`
	PlayerCount int       `json:"playerCount"`
	FinishedAt  time.Time `json:"finishedAt"`
}

func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite only likes one writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, err
	}
	return &History{db: db}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

// Record stores one finished game.
func (h *History) Record(sess *game.Session, res game.Result) error {
	names := map[string]string{}
	for _, p := range sess.Players {
		names[p.ID] = p.Name
	}
	toNames := func(ids []string) string {
		var out []string
		for _, id := range ids {
			if n, ok := names[id]; ok {
				out = append(out, n)
			}
		}
		return strings.Join(out, ",")
	}

	_, err := h.db.Exec(
		`INSERT INTO games (room_code, outcome, winners, eliminated, player_count, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.RoomCode, string(res.Outcome), toNames(res.Winners), toNames(res.Eliminated),
		len(sess.Players), time.Now().UTC(),
	)
	return err
}

// Recent returns the latest finished games, newest first.
func (h *History) Recent(limit int) ([]HistoryEntry, error) {
	rows, err := h.db.Query(
		`SELECT id, room_code, outcome, winners, eliminated, player_count, finished_at
		 FROM games ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		var winners, eliminated string
		if err := rows.Scan(&e.ID, &e.RoomCode, &e.Outcome, &winners, &eliminated, &e.PlayerCount, &e.FinishedAt); err != nil {
			return nil, err
		}
		e.Winners = splitNames(winners)
		e.Eliminated = splitNames(eliminated)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
