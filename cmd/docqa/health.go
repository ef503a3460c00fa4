package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/usecases"
)

func healthCMD(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := usecases.NewSystem(a.client, a.logger).Check(cmd.Context())
			w := out(cmd)
			if report.Err != nil {
				fmt.Fprintf(w, "backend %s: offline\n", a.cfg.APIURL)
				return report.Err
			}
			h := report.Health
			state := "initializing"
			if h.Initialized {
				state = "initialized"
			}
			fmt.Fprintf(w, "backend %s: %s, %s (%dms)\n", a.cfg.APIURL, h.Status, state, report.Latency.Milliseconds())
			fmt.Fprintf(w, "pdf collections: %d\nchat collections: %d\n", h.PDFCollectionsCount, h.ChatCollectionsCount)
			return nil
		},
	}
}

func modelsCMD(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models the backend can answer with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := usecases.NewSystem(a.client, a.logger).Models(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching models: %w", err)
			}
			w := out(cmd)
			fmt.Fprintf(w, "default: %s / %s\n", resp.DefaultProvider, resp.DefaultModel)
			for _, p := range providerOrder(resp) {
				fmt.Fprintf(w, "%s:\n", p)
				for _, m := range resp.AvailableModels[p] {
					marker := " "
					if p == resp.DefaultProvider && m == resp.DefaultModel {
						marker = "*"
					}
					fmt.Fprintf(w, "  %s %s\n", marker, m)
				}
			}
			if resp.UsageHint != "" {
				fmt.Fprintln(w, resp.UsageHint)
			}
			return nil
		},
	}
}

// providerOrder lists the known providers first, then any others the backend reports.
func providerOrder(resp *entities.AvailableModelsResponse) []entities.LLMProvider {
	var order []entities.LLMProvider
	for _, p := range entities.Providers {
		if _, ok := resp.AvailableModels[p]; ok {
			order = append(order, p)
		}
	}
	var extra []entities.LLMProvider
	for p := range resp.AvailableModels {
		if !slices.Contains(entities.Providers, p) {
			extra = append(extra, p)
		}
	}
	slices.Sort(extra)
	return append(order, extra...)
}
