package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/volante/internal/binding"
	"github.com/ayusman/volante/internal/store"
)

var (
	presetDescription string
	presetBase        string
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage stored key binding presets",
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Store the bindings given by the key flags under a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		presets := st.Presets()
		table, err := resolveBindings(cmd.Flags(), presets, presetBase)
		if err != nil {
			return err
		}

		p := store.PresetFromTable(args[0], presetDescription, table)
		if err := presets.Save(p); err != nil {
			return fmt.Errorf("failed to save preset %q: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %s\n", p.Name)
		return nil
	},
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		presets, err := st.Presets().List()
		if err != nil {
			return err
		}
		writePresetList(cmd.OutOrStdout(), presets)
		return nil
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the bindings of a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := st.Presets().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("preset %q: %w", args[0], err)
		}
		writePreset(cmd.OutOrStdout(), p)
		return nil
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		err = st.Presets().Delete(args[0])
		if errors.Is(err, store.ErrBuiltin) {
			return fmt.Errorf("%s is built in and cannot be deleted", args[0])
		}
		if err != nil {
			return fmt.Errorf("preset %q: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %s\n", args[0])
		return nil
	},
}

func init() {
	presetSaveCmd.Flags().StringVar(&presetDescription, "description", "", "Preset description")
	presetSaveCmd.Flags().StringVar(&presetBase, "from", "", "Start from an existing preset instead of the defaults")
	addKeyFlags(presetSaveCmd.Flags())

	presetCmd.AddCommand(presetSaveCmd, presetListCmd, presetShowCmd, presetDeleteCmd)
	rootCmd.AddCommand(presetCmd)
}

func writePresetList(w io.Writer, presets []*store.Preset) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBUILTIN\tDESCRIPTION")
	for _, p := range presets {
		builtin := ""
		if p.Builtin {
			builtin = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, builtin, p.Description)
	}
	tw.Flush()
}

func writePreset(w io.Writer, p *store.Preset) {
	fmt.Fprintf(w, "%s", p.Name)
	if p.Description != "" {
		fmt.Fprintf(w, ": %s", p.Description)
	}
	fmt.Fprintln(w)

	table := p.Table()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\t%s\n", strings.Join(binding.Values, "\t"))
	for player := 1; player <= binding.Players; player++ {
		pb := table.Player(player)
		row := make([]string, 0, len(binding.Values))
		for _, value := range binding.Values {
			key, _ := pb.Get(value)
			if key.IsNone() {
				row = append(row, "-")
				continue
			}
			row = append(row, string(key))
		}
		fmt.Fprintf(tw, "player %d\t%s\n", player, strings.Join(row, "\t"))
	}
	tw.Flush()
}
