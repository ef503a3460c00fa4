package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/usecases"
	"github.com/0xcro3dile/docqa-go/internal/presenter"
)

// queryFlags override the configured query settings for one command.
type queryFlags struct {
	provider   string
	model      string
	collection string
	noPDF      bool
	noDB       bool
	noChat     bool
	expand     bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "llm provider (huggingface, ollama, gemini)")
	cmd.Flags().StringVar(&f.model, "model", "", "llm model")
	cmd.Flags().StringVar(&f.collection, "collection", "", "restrict PDF search to one collection")
	cmd.Flags().BoolVar(&f.noPDF, "no-pdf", false, "skip PDF sources")
	cmd.Flags().BoolVar(&f.noDB, "no-db", false, "skip database sources")
	cmd.Flags().BoolVar(&f.noChat, "no-chat", false, "skip chat sources")
	cmd.Flags().BoolVar(&f.expand, "expand", false, "expand every source panel")
}

func (f *queryFlags) apply(conv *usecases.Conversation) error {
	st := conv.State()
	conv.SetSources(usecases.SourceToggles{
		PDF:  st.Sources.PDF && !f.noPDF,
		DB:   st.Sources.DB && !f.noDB,
		Chat: st.Sources.Chat && !f.noChat,
	})
	if f.collection != "" {
		conv.SetCollection(f.collection)
	}
	if f.provider != "" {
		if err := conv.SelectProvider(entities.LLMProvider(f.provider)); err != nil {
			return err
		}
	}
	if f.model != "" {
		conv.SelectModel(f.model)
	}
	return nil
}

func askCMD(a *app) *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question and print the answer with its sources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv := a.conversation(a.notifier)
			if flags.provider != "" && flags.model == "" {
				// pick the provider's first model
				_ = conv.LoadModels(cmd.Context())
			}
			if err := flags.apply(conv); err != nil {
				return err
			}

			msg, err := conv.Ask(cmd.Context(), strings.Join(args, " "))
			if msg != nil {
				if rerr := presenter.Render(out(cmd), presenter.BuildMessage(*msg), presenter.RenderOptions{Expand: flags.expand}); rerr != nil {
					return rerr
				}
			}
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func chatCMD(a *app) *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive question session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conv := a.conversation(a.notifier)
			_ = conv.LoadModels(cmd.Context())
			if err := flags.apply(conv); err != nil {
				return err
			}
			r := &repl{
				conv:   conv,
				in:     cmd.InOrStdin(),
				out:    out(cmd),
				expand: flags.expand,
			}
			return r.run(cmd.Context())
		},
	}
	flags.register(cmd)
	return cmd
}

type repl struct {
	conv   *usecases.Conversation
	in     io.Reader
	out    io.Writer
	expand bool
}

const replHelp = `commands:
  /provider <name>   switch provider (picks its first model)
  /model <name>      switch model
  /sources <list>    comma separated subset of pdf,db,chat
  /collection <id>   restrict PDF search to one collection ("-" clears)
  /expand            toggle expanded source panels
  /history           print the transcript
  /reset             clear the transcript
  /quit              leave`

func (r *repl) run(ctx context.Context) error {
	st := r.conv.State()
	fmt.Fprintf(r.out, "docqa chat (%s / %s). Type /help for commands.\n", st.Selection.Provider, st.Selection.Model)

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, "? ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := r.command(line)
			if err != nil {
				fmt.Fprintln(r.out, "error:", err)
			}
			if quit {
				return nil
			}
			continue
		}

		msg, err := r.conv.Ask(ctx, line)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil
		}
		if msg != nil {
			if err := presenter.Render(r.out, presenter.BuildMessage(*msg), presenter.RenderOptions{Expand: r.expand}); err != nil {
				return err
			}
		}
	}
}

func (r *repl) command(line string) (quit bool, err error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(r.out, replHelp)
	case "/provider":
		if err := r.conv.SelectProvider(entities.LLMProvider(arg)); err != nil {
			return false, err
		}
		st := r.conv.State()
		fmt.Fprintf(r.out, "using %s / %s\n", st.Selection.Provider, st.Selection.Model)
	case "/model":
		if arg == "" {
			return false, fmt.Errorf("model name required")
		}
		r.conv.SelectModel(arg)
	case "/sources":
		toggles, err := parseSources(arg)
		if err != nil {
			return false, err
		}
		r.conv.SetSources(toggles)
	case "/collection":
		if arg == "-" {
			arg = ""
		}
		r.conv.SetCollection(arg)
	case "/expand":
		r.expand = !r.expand
	case "/history":
		views := presenter.BuildTranscript(r.conv.Messages())
		return false, presenter.RenderTranscript(r.out, views, presenter.RenderOptions{Expand: r.expand})
	case "/reset":
		r.conv.Reset()
	default:
		return false, fmt.Errorf("unknown command %s", name)
	}
	return false, nil
}

func parseSources(list string) (usecases.SourceToggles, error) {
	var t usecases.SourceToggles
	for _, s := range strings.Split(list, ",") {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "pdf":
			t.PDF = true
		case "db":
			t.DB = true
		case "chat":
			t.Chat = true
		case "all":
			t = usecases.AllSources
		case "":
		default:
			return t, fmt.Errorf("unknown source %q", s)
		}
	}
	return t, nil
}
