package main

import (
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/0xcro3dile/docqa-go/internal/adapters/notify"
	"github.com/0xcro3dile/docqa-go/internal/domain/usecases"
	srv "github.com/0xcro3dile/docqa-go/internal/infrastructure/http"
)

func serveCMD(a *app) *cobra.Command {
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the local web front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			a.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			notices := notify.NewRecorder(100)
			chats, err := a.chats(notices)
			if err != nil {
				return err
			}

			server, err := srv.NewServer(srv.Deps{
				Conversation: a.conversation(notices),
				PDFs:         a.pdfs(notices),
				Chats:        chats,
				Database:     usecases.NewDatabaseBrowser(a.client, usecases.DefaultDescribeLimit, a.logger),
				Preview:      usecases.NewPreview(a.client, a.inspector, notices, a.logger),
				System:       usecases.NewSystem(a.client, a.logger),
				Inspector:    a.inspector,
				Notices:      notices,
				Gatherer:     a.registry,
				Logger:       a.logger,
			}, addr)
			if err != nil {
				return err
			}
			return server.Start(cmd.Context())
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	return serve
}
