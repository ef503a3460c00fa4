package main

import (
	"github.com/spf13/cobra"

	"github.com/0xcro3dile/docqa-go/internal/adapters/filewatcher"
	"github.com/0xcro3dile/docqa-go/internal/adapters/loader"
	"github.com/0xcro3dile/docqa-go/internal/domain/usecases"
)

func watchCMD(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Upload PDFs and chat exports dropped into a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.Watch.Dir
			if len(args) == 1 {
				dir = args[0]
			}

			watcher, err := filewatcher.NewFSNotifyWatcher(filewatcher.DefaultExtensions, a.logger)
			if err != nil {
				return err
			}
			defer watcher.Stop()

			chats, err := a.chats(a.notifier)
			if err != nil {
				return err
			}
			auto := usecases.NewAutoUpload(
				watcher,
				loader.NewMultiLoader(a.inspector),
				a.pdfs(a.notifier),
				chats,
				a.cfg.Watch.Settle,
				a.logger,
			)
			return auto.Run(cmd.Context(), dir)
		},
	}
}
