package seed

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/munakata1001/mitumorisyo/internal/pricing"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run inserts the built-in material densities that are not present yet.
// Existing rows are never modified, so edited densities survive restarts.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	if err := ensureMaterials(tx, pricing.DefaultDensities(), &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureMaterials(tx *sql.Tx, densities pricing.DensityTable, stats *Stats) error {
	names := make([]string, 0, len(densities))
	for name := range densities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM materials WHERE name = ? LIMIT 1)`, name).Scan(&exists); err != nil {
			return fmt.Errorf("check material %s existence: %w", name, err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`INSERT INTO materials (name, density) VALUES (?, ?)`, name, densities[name]); err != nil {
			return fmt.Errorf("insert material %s: %w", name, err)
		}
		stats.Inserts++
	}
	return nil
}
