package main

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/usecases"
)

func previewCMD(a *app) *cobra.Command {
	var (
		src      entities.PdfSourceInfo
		showText bool
	)
	cmd := &cobra.Command{
		Use:   "preview <file-url>",
		Short: "Check a cited PDF and print its viewer link, optionally with the page text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src.FileURL = args[0]
			if src.FileName == "" {
				src.FileName = path.Base(src.FileURL)
			}

			p := usecases.NewPreview(a.client, a.inspector, a.notifier, a.logger)
			st, err := p.Open(cmd.Context(), src)
			if err != nil {
				return err
			}
			w := out(cmd)
			fmt.Fprintln(w, st.ViewerURL())
			if !showText {
				return nil
			}

			text, err := p.PageText(cmd.Context())
			if err != nil {
				return err
			}
			st2, _ := p.State()
			fmt.Fprintf(w, "\npage %d of %d\n\n%s\n", st2.Page, st2.PageCount, text)
			return nil
		},
	}
	cmd.Flags().IntVar(&src.Page, "page", 1, "page to open")
	cmd.Flags().StringVar(&src.FileName, "name", "", "display name (defaults to the URL's last segment)")
	cmd.Flags().BoolVar(&showText, "text", false, "download the PDF and print the page text")
	return cmd
}
