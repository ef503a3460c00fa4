package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/docqa-go/internal/adapters/loader"
	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

func pdfCMD(a *app) *cobra.Command {
	pdf := &cobra.Command{
		Use:   "pdf",
		Short: "Manage PDF collections",
	}

	upload := &cobra.Command{
		Use:   "upload <file.pdf>...",
		Short: "Upload PDFs as one new collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := loader.NewPDFLoader(a.inspector)
			files := make([]entities.UploadFile, 0, len(args))
			for _, path := range args {
				f, err := l.Load(cmd.Context(), path)
				if err != nil {
					return err
				}
				files = append(files, *f)
			}
			resp, err := a.pdfs(a.notifier).Upload(cmd.Context(), files)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "collection %s: %d file(s) %s\n", resp.CollectionID, resp.FileCount, resp.Status)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List PDF collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := a.pdfs(a.notifier)
			if err := uc.Refresh(cmd.Context()); err != nil {
				return err
			}
			items := uc.Collections()
			if len(items) == 0 {
				fmt.Fprintln(out(cmd), "(no PDF collections)")
				return nil
			}
			tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDOCUMENTS\tCREATED\tFILES")
			for _, c := range items {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", c.CollectionID, c.DocumentCount, c.CreatedAt, strings.Join(c.FileNames, ", "))
			}
			return tw.Flush()
		},
	}

	del := &cobra.Command{
		Use:   "delete <collection-id>",
		Short: "Delete a PDF collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.pdfs(a.notifier).Delete(cmd.Context(), args[0])
		},
	}

	var output string
	download := &cobra.Command{
		Use:   "download <collection-id> <file-name>",
		Short: "Download a stored PDF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID, fileName := args[0], args[1]
			target := output
			if target == "" {
				target = filepath.Base(fileName)
			}
			f, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}

			n, err := a.pdfs(a.notifier).Download(cmd.Context(), collectionID, fileName, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(target)
				return err
			}
			fmt.Fprintf(out(cmd), "%s: %d bytes\n", target, n)
			return nil
		},
	}
	download.Flags().StringVarP(&output, "output", "o", "", "destination path (defaults to the file name)")

	pdf.AddCommand(upload, list, del, download)
	return pdf
}

func chatlogCMD(a *app) *cobra.Command {
	chatlog := &cobra.Command{
		Use:   "chatlog",
		Short: "Manage imported chat exports",
	}

	var platform string
	upload := &cobra.Command{
		Use:   "upload <export>",
		Short: "Import a WhatsApp, Teams or Slack export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := a.chats(a.notifier)
			if err != nil {
				return err
			}
			if platform != "" {
				if err := uc.SetPlatform(entities.ChatPlatform(platform)); err != nil {
					return err
				}
			}
			f, err := loader.NewChatExportLoader().Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			resp, err := uc.Upload(cmd.Context(), *f)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "collection %s: %d %s messages from %s\n",
				resp.CollectionID, resp.MessageCount, resp.Platform, resp.FileName)
			return nil
		},
	}
	upload.Flags().StringVarP(&platform, "platform", "p", "", "export platform (whatsapp, teams, slack); defaults to watch.platform")

	list := &cobra.Command{
		Use:   "list",
		Short: "List chat collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := a.chats(a.notifier)
			if err != nil {
				return err
			}
			if err := uc.Refresh(cmd.Context()); err != nil {
				return err
			}
			items := uc.Collections()
			if len(items) == 0 {
				fmt.Fprintln(out(cmd), "(no chat collections)")
				return nil
			}
			tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPLATFORM\tFILE\tMESSAGES\tRANGE\tPARTICIPANTS")
			for _, c := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					c.CollectionID, c.Platform, c.FileName, c.MessageCount, dateRange(c.DateRange), strings.Join(c.Participants, ", "))
			}
			return tw.Flush()
		},
	}

	del := &cobra.Command{
		Use:   "delete <collection-id>",
		Short: "Delete a chat collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := a.chats(a.notifier)
			if err != nil {
				return err
			}
			return uc.Delete(cmd.Context(), args[0])
		},
	}

	chatlog.AddCommand(upload, list, del)
	return chatlog
}

func dateRange(r *entities.DateRange) string {
	if r == nil {
		return "-"
	}
	return r.Start.Date() + " .. " + r.End.Date()
}
