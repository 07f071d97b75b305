package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vitaliisemenov/healthd/internal/config"
	core "github.com/vitaliisemenov/healthd/internal/core/health"
	infrahealth "github.com/vitaliisemenov/healthd/internal/infrastructure/health"
)

// loadOrEmpty loads path's silencer set, treating a missing file as an
// empty, unset store rather than an error — the CLI is often the thing
// that creates the file in the first place.
func loadOrEmpty(loader *infrahealth.SilencerFileLoader, path string) (core.SilenceType, bool, []core.Silencer, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return core.SilenceNone, false, nil, nil
	}
	return loader.Load(path)
}

// newSilenceCommand is a CLI front end to the silencer control-command API
// of spec §6 (DISABLE ALL, SILENCE ALL, RESET, add/remove silencer, set
// type): it edits the silencers file on disk and relies on `healthd reload`
// (SIGHUP) to push the change into a running supervisor, since spec §6
// explicitly leaves the live control API itself out of scope to serve.
func newSilenceCommand(configPath *string) *cobra.Command {
	root := &cobra.Command{
		Use:   "silence",
		Short: "Inspect or edit the silencers file",
	}

	root.AddCommand(
		newSilenceListCommand(configPath),
		newSilenceAddCommand(configPath),
		newSilenceRemoveCommand(configPath),
		newSilenceAllCommand(configPath),
		newSilenceResetCommand(configPath),
	)

	return root
}

func silencersPath(configPath *string) (string, error) {
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	if cfg.Health.SilencersFile == "" {
		return "", fmt.Errorf("no silencers_file configured")
	}
	return cfg.Health.SilencersFile, nil
}

func newSilenceListCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the current silencer rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := silencersPath(configPath)
			if err != nil {
				return err
			}

			loader := infrahealth.NewSilencerFileLoader()
			stype, allAlarms, silencers, err := loadOrEmpty(loader, path)
			if err != nil {
				return fmt.Errorf("load silencers file: %w", err)
			}

			cmd.Printf("type=%s all_alarms=%t\n", stype.String(), allAlarms)
			for _, s := range silencers {
				cmd.Printf("  %s alarms=%q charts=%q contexts=%q hosts=%q families=%q\n",
					s.ID, s.Alarms, s.Charts, s.Contexts, s.Hosts, s.Families)
			}
			return nil
		},
	}
}

func newSilenceAddCommand(configPath *string) *cobra.Command {
	var alarms, charts, contexts, hosts, families string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a silencer rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := silencersPath(configPath)
			if err != nil {
				return err
			}

			loader := infrahealth.NewSilencerFileLoader()
			stype, allAlarms, silencers, err := loadOrEmpty(loader, path)
			if err != nil {
				return fmt.Errorf("load silencers file: %w", err)
			}

			sil := core.Silencer{
				ID:       uuid.NewString(),
				Alarms:   alarms,
				Charts:   charts,
				Contexts: contexts,
				Hosts:    hosts,
				Families: families,
			}
			silencers = append(silencers, sil)

			if err := loader.Save(path, stype, allAlarms, silencers); err != nil {
				return fmt.Errorf("save silencers file: %w", err)
			}

			cmd.Printf("added silencer %s (run `healthd reload` to apply)\n", sil.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&alarms, "alarms", "", "glob pattern matching alarm names")
	cmd.Flags().StringVar(&charts, "charts", "", "glob pattern matching chart ids")
	cmd.Flags().StringVar(&contexts, "contexts", "", "glob pattern matching contexts")
	cmd.Flags().StringVar(&hosts, "hosts", "", "glob pattern matching host names")
	cmd.Flags().StringVar(&families, "families", "", "glob pattern matching families")

	return cmd
}

func newSilenceRemoveCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a silencer rule by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := silencersPath(configPath)
			if err != nil {
				return err
			}

			loader := infrahealth.NewSilencerFileLoader()
			stype, allAlarms, silencers, err := loadOrEmpty(loader, path)
			if err != nil {
				return fmt.Errorf("load silencers file: %w", err)
			}

			id := args[0]
			kept := silencers[:0]
			removed := false
			for _, s := range silencers {
				if s.ID == id {
					removed = true
					continue
				}
				kept = append(kept, s)
			}
			if !removed {
				return fmt.Errorf("no silencer with id %s", id)
			}

			if err := loader.Save(path, stype, allAlarms, kept); err != nil {
				return fmt.Errorf("save silencers file: %w", err)
			}

			cmd.Printf("removed silencer %s (run `healthd reload` to apply)\n", id)
			return nil
		},
	}
}

// newSilenceAllCommand implements DISABLE ALL / SILENCE ALL: set the
// store-wide mode and all_alarms flag without touching the per-rule list.
func newSilenceAllCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "all <disable|silence>",
		Short:     "Disable or silence every alarm, regardless of per-rule patterns",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"disable", "silence"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := silencersPath(configPath)
			if err != nil {
				return err
			}

			loader := infrahealth.NewSilencerFileLoader()
			_, _, silencers, err := loadOrEmpty(loader, path)
			if err != nil {
				return fmt.Errorf("load silencers file: %w", err)
			}

			stype := core.SilenceNotifications
			if args[0] == "disable" {
				stype = core.SilenceDisableAlarms
			}

			if err := loader.Save(path, stype, true, silencers); err != nil {
				return fmt.Errorf("save silencers file: %w", err)
			}

			cmd.Printf("set mode=%s all_alarms=true (run `healthd reload` to apply)\n", stype.String())
			return nil
		},
	}
}

// newSilenceResetCommand implements RESET: clear the global mode and every
// per-rule silencer.
func newSilenceResetCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the global silence mode and all silencer rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := silencersPath(configPath)
			if err != nil {
				return err
			}

			loader := infrahealth.NewSilencerFileLoader()
			if err := loader.Save(path, core.SilenceNone, false, nil); err != nil {
				return fmt.Errorf("save silencers file: %w", err)
			}

			cmd.Println("silencers reset (run `healthd reload` to apply)")
			return nil
		},
	}
}
