package cmd

import (
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pablogoliveira/personia-hub/internal/services"
	"github.com/pablogoliveira/personia-hub/internal/tui"
	"github.com/pablogoliveira/personia-hub/internal/utils/httpclient"
	"github.com/spf13/cobra"
)

func newFormCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Abre o formulário de cadastro",
		Long: `Abre o formulário de cadastro em três etapas: dados pessoais, endereço e contato.

O endereço é preenchido pelo CEP ao sair do campo. O cadastro é enviado para --api-url.

Navegação:
  Tab/Shift+Tab  - Próximo/anterior campo
  Ctrl+N/Ctrl+P  - Próxima/anterior etapa
  Enter          - Avançar ou enviar na última etapa
  Ctrl+S         - Enviar
  Esc/Ctrl+C     - Sair`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := httpclient.New(opts.cfg.Timeout.Duration)
			model := tui.NewModel(tui.Config{
				Submitter:     services.NewBackendClient(opts.cfg.APIURL, client, opts.logger.Named("backend")),
				AddressLookup: newCEPLookup(opts, client),
				ResetDelay:    opts.cfg.ResetDelay.Duration,
				Logger:        opts.logger,
			})
			defer model.Close()

			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				printError("TUI", err)
				return err
			}
			return nil
		},
	}
}

func newCEPLookup(opts *options, client *http.Client) *services.CEPService {
	return services.NewCEPService(opts.cfg.ViaCEPURL, client, opts.logger.Named("cep"))
}
