package db

import (
	"log"

	"eve-trader/internal/routes"
)

// GetRoute returns the persisted jump count for a pair. The stored value may
// be routes.UnreachableJumps for known dead ends.
func (d *DB) GetRoute(origin, dest int32) (int, bool) {
	var jumps int
	err := d.sql.QueryRow(
		"SELECT jumps FROM routes WHERE origin_system_id = ? AND destination_system_id = ?",
		origin, dest,
	).Scan(&jumps)
	if err != nil {
		return 0, false
	}
	return jumps, true
}

// SetRoute upserts the jump count for a pair. Last writer wins; jump counts
// for a pair are deterministic, so racing writers cannot corrupt the store.
func (d *DB) SetRoute(origin, dest int32, jumps int) {
	_, err := d.sql.Exec(
		"INSERT OR REPLACE INTO routes (origin_system_id, destination_system_id, jumps) VALUES (?, ?, ?)",
		origin, dest, jumps,
	)
	if err != nil {
		log.Printf("[DB] SetRoute %d->%d: %v", origin, dest, err)
	}
}

// AllRoutes loads every persisted route for the startup preload.
func (d *DB) AllRoutes() (map[routes.Pair]int, error) {
	rows, err := d.sql.Query("SELECT origin_system_id, destination_system_id, jumps FROM routes")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	all := make(map[routes.Pair]int)
	for rows.Next() {
		var origin, dest int32
		var jumps int
		if err := rows.Scan(&origin, &dest, &jumps); err != nil {
			continue
		}
		all[routes.Pair{Origin: origin, Dest: dest}] = jumps
	}
	return all, rows.Err()
}
