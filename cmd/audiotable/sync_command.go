package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"audiotable/internal/catalog"
	"audiotable/internal/services"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Register audio files found in the audio directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			dbManager, err := ctx.openDatabase()
			if err != nil {
				return err
			}
			defer dbManager.Close()

			repo := services.NewRepository(dbManager.GetGormDB())
			syncer := catalog.NewSyncer(repo, catalog.NewDirectory(cfg.Storage.AudioDir), nil)

			added, err := syncer.Sync(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %s audio %s from %s\n",
				humanize.Comma(int64(added)), plural(added, "file", "files"), cfg.Storage.AudioDir)
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
