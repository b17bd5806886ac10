package main

import (
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store the maps of a seed document",
		Long: `Seed stores every map of a YAML seed document whose name is not taken yet.
Without --file the built-in campus is used. Maps go to DATABASE_URL; without
it the command only validates the document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.SeedFile
			}

			backend, err := openMapStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer backend.Close()

			return applySeed(cmd.Context(), backend.store, file, logger)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "seed document (default: built-in campus or SEED_FILE)")
	return cmd
}
