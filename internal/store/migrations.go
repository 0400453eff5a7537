package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/volante/internal/binding"
)

// runMigrations creates the schema and seeds the built-in presets.
func (s *Store) runMigrations() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS presets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			player1 TEXT NOT NULL,
			player2 TEXT NOT NULL,
			builtin INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_presets_name ON presets(name)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return s.seedPresets()
}

// builtinPresets are always present and cannot be changed or deleted.
func builtinPresets() []*Preset {
	return []*Preset{
		{
			Name:        "default",
			Description: "Arrow keys for player 1, WASD for player 2",
			Player1:     binding.DefaultTable().Player(1),
			Player2:     binding.DefaultTable().Player(2),
		},
		{
			Name:        "micro-machines",
			Description: "Letters only, for emulators that ignore the arrow keys",
			Player1:     binding.PlayerBindings{High: "w", Low: "s", Left: "a", Right: "d"},
			Player2:     binding.PlayerBindings{High: "u", Low: "j", Left: "h", Right: "k"},
		},
	}
}

func (s *Store) seedPresets() error {
	now := time.Now()
	for _, p := range builtinPresets() {
		p1, p2, err := encodeBindings(p)
		if err != nil {
			return err
		}
		_, err = s.db.Exec(
			`INSERT OR IGNORE INTO presets (id, name, description, player1, player2, builtin, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
			uuid.NewString(), p.Name, p.Description, p1, p2, now, now,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
