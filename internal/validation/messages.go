package validation

// User-facing validation messages
const (
	MsgFieldRequired = "Este campo é obrigatório"

	MsgNomeRequired = "O nome é obrigatório"
	MsgNomeTooShort = "O nome deve ter pelo menos 3 caracteres"

	MsgDataNascimentoRequired = "A data de nascimento é obrigatória"
	MsgDataNascimentoFuture   = "A data de nascimento não pode ser no futuro"
	MsgDataNascimentoInvalid  = "Data de nascimento inválida"

	MsgNomeMaeRequired = "O nome da mãe é obrigatório"
	MsgNomeMaeTooShort = "O nome da mãe deve ter pelo menos 3 caracteres"

	MsgRGRequired = "O RG é obrigatório"
	MsgRGInvalid  = "RG inválido"

	MsgCPFRequired   = "O CPF é obrigatório"
	MsgCPFDigitCount = "CPF deve conter 11 dígitos"
	MsgCPFInvalid    = "CPF inválido"

	MsgCEPRequired = "O CEP é obrigatório"
	MsgCEPInvalid  = "CEP inválido"

	MsgLogradouroRequired = "O logradouro é obrigatório"
	MsgNumeroRequired     = "O número é obrigatório"
	MsgBairroRequired     = "O bairro é obrigatório"
	MsgCidadeRequired     = "A cidade é obrigatória"

	MsgEstadoRequired = "O estado é obrigatório"
	MsgEstadoLength   = "O estado deve ter 2 caracteres"

	MsgTelefoneRequired     = "O telefone é obrigatório"
	MsgTelefoneDigitCount   = "Telefone deve ter 10 ou 11 dígitos (com DDD)"
	MsgTelefoneMobilePrefix = "Celular deve começar com 9 após o DDD"

	MsgEmailRequired = "O e-mail é obrigatório"
	MsgEmailInvalid  = "E-mail inválido"
)
