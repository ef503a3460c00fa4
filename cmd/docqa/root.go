package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/0xcro3dile/docqa-go/internal/adapters/backend"
	"github.com/0xcro3dile/docqa-go/internal/adapters/notify"
	"github.com/0xcro3dile/docqa-go/internal/adapters/parser"
	"github.com/0xcro3dile/docqa-go/internal/adapters/rest"
	"github.com/0xcro3dile/docqa-go/internal/config"
	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
	"github.com/0xcro3dile/docqa-go/internal/domain/usecases"
	"github.com/0xcro3dile/docqa-go/internal/logging"
)

// app holds what every command needs. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	cfgPath string
	apiURL  string

	cfg       *config.Config
	logger    *slog.Logger
	registry  *prometheus.Registry
	client    *backend.Client
	inspector *parser.PDFInspector
	notifier  ports.Notifier
}

func newRootCMD() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "docqa",
		Short:         "Ask questions about PDFs, database tables and chat exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "config file (default searches ./docqa.yaml)")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides DOCQA_API_URL)")

	root.AddCommand(
		healthCMD(a),
		modelsCMD(a),
		askCMD(a),
		chatCMD(a),
		pdfCMD(a),
		chatlogCMD(a),
		dbCMD(a),
		previewCMD(a),
		watchCMD(a),
		serveCMD(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if u := strings.TrimRight(strings.TrimSpace(a.apiURL), "/"); u != "" {
		cfg.APIURL = u
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	a.cfg = cfg
	a.logger = logging.Setup(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	a.registry = prometheus.NewRegistry()
	a.client = backend.New(cfg.APIURL, backend.Options{
		QueryPath: cfg.Query.Path,
		Timeout:   cfg.RequestTimeout,
		Logger:    a.logger,
		Metrics:   rest.NewMetrics(a.registry),
	})
	a.inspector = parser.NewPDFInspector()
	a.notifier = notify.NewConsole(cmd.ErrOrStderr(), a.logger)
	return nil
}

// conversation builds a conversation seeded from the query config. A
// configured provider or model wins over the backend defaults.
func (a *app) conversation(notifier ports.Notifier) *usecases.Conversation {
	conv := usecases.NewConversation(a.client, a.client, notifier, a.logger)
	conv.SetSources(usecases.SourceToggles{
		PDF:  a.cfg.Query.IncludePDF,
		DB:   a.cfg.Query.IncludeDB,
		Chat: a.cfg.Query.IncludeChat,
	})
	if sel, ok := a.cfg.Query.Selection(); ok {
		_ = conv.Select(sel)
	}
	return conv
}

func (a *app) pdfs(notifier ports.Notifier) *usecases.PDFCollections {
	return usecases.NewPDFCollections(a.client, notifier, a.logger)
}

func (a *app) chats(notifier ports.Notifier) (*usecases.ChatCollections, error) {
	uc := usecases.NewChatCollections(a.client, notifier, a.logger)
	if err := uc.SetPlatform(entities.ChatPlatform(a.cfg.Watch.Platform)); err != nil {
		return nil, err
	}
	return uc, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
