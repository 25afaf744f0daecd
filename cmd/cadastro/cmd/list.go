package cmd

import (
	"context"
	"fmt"

	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/services"
	"github.com/pablogoliveira/personia-hub/internal/utils"
	"github.com/pablogoliveira/personia-hub/internal/utils/httpclient"
	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		search string
		page   int
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista pessoas cadastradas",
		Long: `Lista pessoas ordenadas por nome. A busca considera nome, CPF e e-mail.

Exemplo:
  cadastro list --search silva --page 2 --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), opts.cfg.Timeout.Duration)
			defer cancel()

			client := services.NewBackendClient(opts.cfg.APIURL, httpclient.New(opts.cfg.Timeout.Duration), opts.logger)
			resp, err := client.ListPersons(ctx, models.PersonFilter{Page: page, Limit: limit, Search: search})
			if err != nil {
				return fmt.Errorf("falha ao listar pessoas: %w", err)
			}

			printPersons(cmd, resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Texto de busca")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Página")
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Itens por página (máximo: 100)")
	return cmd
}

func printPersons(cmd *cobra.Command, resp *models.PersonListResponse) {
	out := cmd.OutOrStdout()
	if len(resp.Data) == 0 {
		fmt.Fprintln(out, "Nenhuma pessoa encontrada.")
		return
	}

	fmt.Fprintf(out, "%-36s  %-30s  %-14s  %s\n", "ID", "NOME", "CPF", "E-MAIL")
	for _, p := range resp.Data {
		fmt.Fprintf(out, "%-36s  %-30s  %-14s  %s\n", p.ID, p.Nome, utils.FormatCPF(p.CPF), p.Email)
	}
	fmt.Fprintf(out, "\nPágina %d de %d (%d no total)\n",
		resp.Pagination.CurrentPage, resp.Pagination.TotalPages, resp.Pagination.TotalItems)
}
