package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/volante/internal/binding"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrBuiltin is returned when changing or deleting a built-in preset.
	ErrBuiltin = errors.New("built-in preset cannot be modified")
)

// Preset is a named set of key bindings for both players.
type Preset struct {
	ID          string
	Name        string
	Description string
	Player1     binding.PlayerBindings
	Player2     binding.PlayerBindings
	Builtin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Table returns the preset as a binding table.
func (p *Preset) Table() binding.Table {
	return binding.NewTable(p.Player1, p.Player2)
}

// PresetFromTable builds an unsaved preset from a binding table.
func PresetFromTable(name, description string, t binding.Table) *Preset {
	return &Preset{
		Name:        name,
		Description: description,
		Player1:     t.Player(1),
		Player2:     t.Player(2),
	}
}

// PresetRepository provides CRUD operations for presets.
type PresetRepository struct {
	db *sql.DB
}

// Presets returns the preset repository for this store.
func (s *Store) Presets() *PresetRepository {
	return &PresetRepository{db: s.db}
}

func encodeBindings(p *Preset) (string, string, error) {
	p1, err := json.Marshal(p.Player1)
	if err != nil {
		return "", "", err
	}
	p2, err := json.Marshal(p.Player2)
	if err != nil {
		return "", "", err
	}
	return string(p1), string(p2), nil
}

// Save creates the preset or replaces the bindings of an existing user preset
// with the same name. The bindings are validated first.
func (r *PresetRepository) Save(p *Preset) error {
	if p.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	if err := p.Table().Validate(); err != nil {
		return err
	}

	existing, err := r.GetByName(p.Name)
	switch {
	case errors.Is(err, ErrNotFound):
		return r.create(p)
	case err != nil:
		return err
	case existing.Builtin:
		return fmt.Errorf("%s: %w", p.Name, ErrBuiltin)
	}

	p1, p2, err := encodeBindings(p)
	if err != nil {
		return err
	}

	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()

	_, err = r.db.Exec(
		`UPDATE presets SET description = ?, player1 = ?, player2 = ?, updated_at = ?
		 WHERE id = ?`,
		p.Description, p1, p2, p.UpdatedAt, p.ID,
	)
	return err
}

func (r *PresetRepository) create(p *Preset) error {
	p1, p2, err := encodeBindings(p)
	if err != nil {
		return err
	}

	now := time.Now()
	p.ID = uuid.NewString()
	p.Builtin = false
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err = r.db.Exec(
		`INSERT INTO presets (id, name, description, player1, player2, builtin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		p.ID, p.Name, p.Description, p1, p2, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

const presetColumns = `id, name, description, player1, player2, builtin, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(row scanner) (*Preset, error) {
	p := &Preset{}
	var p1, p2 string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p1, &p2, &p.Builtin, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(p1), &p.Player1); err != nil {
		return nil, fmt.Errorf("preset %s player 1: %w", p.Name, err)
	}
	if err := json.Unmarshal([]byte(p2), &p.Player2); err != nil {
		return nil, fmt.Errorf("preset %s player 2: %w", p.Name, err)
	}
	return p, nil
}

// GetByName retrieves a preset by its name.
func (r *PresetRepository) GetByName(name string) (*Preset, error) {
	p, err := scanPreset(r.db.QueryRow(
		`SELECT `+presetColumns+` FROM presets WHERE name = ?`, name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// List returns all presets ordered by name.
func (r *PresetRepository) List() ([]*Preset, error) {
	rows, err := r.db.Query(`SELECT ` + presetColumns + ` FROM presets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

// Delete removes a user preset by name.
func (r *PresetRepository) Delete(name string) error {
	p, err := r.GetByName(name)
	if err != nil {
		return err
	}
	if p.Builtin {
		return fmt.Errorf("%s: %w", name, ErrBuiltin)
	}

	_, err = r.db.Exec(`DELETE FROM presets WHERE id = ?`, p.ID)
	return err
}
