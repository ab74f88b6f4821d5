package main

import (
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rflorenc/distribution-workbench/internal/models"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the distributions of the configured endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
			s.Suffix = " Listing distributions..."
			s.Start()
			list, err := client.List(cmd.Context())
			s.Stop()
			if err != nil {
				return err
			}
			printDistributions(cmd.OutOrStdout(), list)
			return nil
		},
	}
	cmd.Flags().Bool("demo", false, "List the seeded in-memory service")
	return cmd
}

func printDistributions(out io.Writer, list []*models.Distribution) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Origin", "Domain", "Enabled", "Status", "Aliases", "Deletable"})
	for _, d := range list {
		t.AppendRow(table.Row{d.ID, d.OriginBucket, d.DomainName, d.Enabled, d.Status, strings.Join(d.Aliases, ","), d.Deletable()})
	}
	t.Render()
}
