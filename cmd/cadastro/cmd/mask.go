package cmd

import (
	"fmt"

	"github.com/pablogoliveira/personia-hub/internal/utils"
	"github.com/spf13/cobra"
)

func newMaskCmd(_ *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mask <campo> <valor>",
		Short: "Aplica a máscara de exibição de um campo",
		Long: `Formata o valor como o formulário o exibe. Dígitos excedentes são descartados.

Campos com máscara: cpf, rg, cep, telefone.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, value := args[0], args[1]
			if !utils.HasMask(field) {
				return fmt.Errorf("o campo %s não tem máscara", field)
			}
			fmt.Fprintln(cmd.OutOrStdout(), utils.ApplyMask(field, value))
			return nil
		},
	}
}
