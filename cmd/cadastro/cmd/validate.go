package cmd

import (
	"errors"
	"fmt"

	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/utils"
	"github.com/pablogoliveira/personia-hub/internal/validation"
	"github.com/spf13/cobra"
)

// errInvalidValue makes the command exit non-zero without printing usage
var errInvalidValue = errors.New("valor inválido")

func newValidateCmd(_ *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <campo> <valor>",
		Short: "Valida o valor de um campo",
		Long: `Valida um valor com as mesmas regras da API e do formulário.

Campos mascarados (cpf, rg, cep, telefone) aceitam o valor com ou sem máscara.

Exemplos:
  cadastro validate cpf 529.982.247-25
  cadastro validate dataNascimento 1990-05-20`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, value := args[0], args[1]
			if !models.IsPersonField(field) {
				return fmt.Errorf("campo desconhecido: %s", field)
			}

			raw := utils.UnmaskValue(field, value)
			out := cmd.OutOrStdout()
			if msg := validation.ValidateField(field, raw); msg != "" {
				fmt.Fprintf(out, "✗ %s: %s\n", field, msg)
				if field == models.FieldCPF {
					printCPFHint(cmd, raw)
				}
				return errInvalidValue
			}

			fmt.Fprintf(out, "✓ %s: %s\n", field, utils.ApplyMask(field, raw))
			return nil
		},
	}
}

// printCPFHint shows the check digits the first nine digits call for
func printCPFHint(cmd *cobra.Command, digits string) {
	if len(digits) < 9 {
		return
	}
	first, second, ok := utils.CPFCheckDigits(digits[:9])
	if !ok {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  dígitos verificadores esperados: %d%d (%s)\n",
		first, second, utils.FormatCPF(fmt.Sprintf("%s%d%d", digits[:9], first, second)))
}
