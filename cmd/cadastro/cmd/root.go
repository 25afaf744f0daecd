package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options are the values shared by every subcommand
type options struct {
	cfgFile string
	apiURL  string
	verbose bool

	cfg    Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "cadastro",
		Short: "Cadastro de pessoas pelo terminal",
		Long: `cadastro preenche, valida e consulta cadastros de pessoas.

Comandos:
  form      - formulário interativo em três etapas
  validate  - valida o valor de um campo
  mask      - aplica a máscara de exibição de um campo
  list      - lista pessoas cadastradas`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(opts.cfgFile)
			if err != nil {
				return err
			}
			if opts.apiURL != "" {
				cfg.APIURL = opts.apiURL
			}
			opts.cfg = cfg

			if opts.verbose {
				logger, err := zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				opts.logger = logger
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "Arquivo de configuração TOML (padrão: ./cadastro.toml)")
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "URL da API de pessoas")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Saída detalhada")

	root.AddCommand(
		newFormCmd(opts),
		newValidateCmd(opts),
		newMaskCmd(opts),
		newListCmd(opts),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return newRootCmd().Execute()
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Erro: %s: %v\n", msg, err)
}
