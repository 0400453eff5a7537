package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/ayusman/volante/internal/binding"
	"github.com/ayusman/volante/internal/store"
)

// addKeyFlags registers --key-for-playerN-VALUE for both players with the
// default bindings as defaults.
func addKeyFlags(fs *pflag.FlagSet) {
	defaults := binding.DefaultTable()
	for player := 1; player <= binding.Players; player++ {
		p := defaults.Player(player)
		for _, value := range binding.Values {
			def, _ := p.Get(value)
			fs.String(
				binding.FlagName(player, value),
				string(def),
				fmt.Sprintf("Key for player %d %s (empty means no key)", player, value),
			)
		}
	}
}

// keyOverrides returns a binding override for every key flag set explicitly.
func keyOverrides(fs *pflag.FlagSet) ([]binding.Override, error) {
	var overrides []binding.Override
	for player := 1; player <= binding.Players; player++ {
		for _, value := range binding.Values {
			name := binding.FlagName(player, value)
			if !fs.Changed(name) {
				continue
			}
			key, err := fs.GetString(name)
			if err != nil {
				return nil, err
			}
			overrides = append(overrides, binding.Override{Player: player, Value: value, Key: key})
		}
	}
	return overrides, nil
}

// resolveBindings starts from the named preset, or the defaults when name is
// empty, and applies the explicitly set key flags on top.
func resolveBindings(fs *pflag.FlagSet, presets *store.PresetRepository, name string) (binding.Table, error) {
	base := binding.DefaultTable()
	if name != "" {
		p, err := presets.GetByName(name)
		if err != nil {
			return binding.Table{}, fmt.Errorf("preset %q: %w", name, err)
		}
		base = p.Table()
	}

	overrides, err := keyOverrides(fs)
	if err != nil {
		return binding.Table{}, err
	}
	return base.WithOverrides(overrides)
}

func volanteDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".volante"
	}
	return filepath.Join(home, ".volante")
}

func openStore(path string) (*store.Store, error) {
	if path == "" {
		def, err := store.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to locate preset store: %w", err)
		}
		path = def
	}
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open preset store: %w", err)
	}
	return st, nil
}
