package models

import (
	"time"
)

// Person field names, as used by the API, the form and the validation registry
const (
	FieldNome           = "nome"
	FieldDataNascimento = "dataNascimento"
	FieldNomeMae        = "nomeMae"
	FieldRG             = "rg"
	FieldCPF            = "cpf"
	FieldCEP            = "cep"
	FieldLogradouro     = "logradouro"
	FieldNumero         = "numero"
	FieldComplemento    = "complemento"
	FieldBairro         = "bairro"
	FieldCidade         = "cidade"
	FieldEstado         = "estado"
	FieldTelefone       = "telefone"
	FieldEmail          = "email"
)

// fieldNames lists the person fields in form order
var fieldNames = []string{
	FieldNome, FieldDataNascimento, FieldNomeMae, FieldRG, FieldCPF,
	FieldCEP, FieldLogradouro, FieldNumero, FieldComplemento, FieldBairro, FieldCidade, FieldEstado,
	FieldTelefone, FieldEmail,
}

// FieldNames returns the person field names in form order
func FieldNames() []string {
	out := make([]string, len(fieldNames))
	copy(out, fieldNames)
	return out
}

// IsPersonField reports whether name is a person field
func IsPersonField(name string) bool {
	for _, f := range fieldNames {
		if f == name {
			return true
		}
	}
	return false
}

// PersonInput is the user-editable part of a person record
type PersonInput struct {
	Nome           string `bson:"nome" json:"nome" example:"João Silva"`
	DataNascimento string `bson:"data_nascimento" json:"dataNascimento" example:"1990-05-20"`
	NomeMae        string `bson:"nome_mae" json:"nomeMae" example:"Maria Silva"`
	RG             string `bson:"rg" json:"rg" example:"123456789"`
	CPF            string `bson:"cpf" json:"cpf" example:"52998224725"`
	CEP            string `bson:"cep" json:"cep" example:"01001000"`
	Logradouro     string `bson:"logradouro" json:"logradouro" example:"Praça da Sé"`
	Numero         string `bson:"numero" json:"numero" example:"100"`
	Complemento    string `bson:"complemento,omitempty" json:"complemento,omitempty" example:"Apto 12"`
	Bairro         string `bson:"bairro" json:"bairro" example:"Sé"`
	Cidade         string `bson:"cidade" json:"cidade" example:"São Paulo"`
	Estado         string `bson:"estado" json:"estado" example:"SP"`
	Telefone       string `bson:"telefone" json:"telefone" example:"11987654321"`
	Email          string `bson:"email" json:"email" example:"joao.silva@example.com"`
}

// Field returns the value of the named field. ok is false for unknown names.
func (p *PersonInput) Field(name string) (value string, ok bool) {
	ptr := p.fieldPtr(name)
	if ptr == nil {
		return "", false
	}
	return *ptr, true
}

// SetField sets the named field. It returns false for unknown names.
func (p *PersonInput) SetField(name, value string) bool {
	ptr := p.fieldPtr(name)
	if ptr == nil {
		return false
	}
	*ptr = value
	return true
}

// Map returns the fields as a name to value map
func (p *PersonInput) Map() map[string]string {
	out := make(map[string]string, len(fieldNames))
	for _, name := range fieldNames {
		out[name] = *p.fieldPtr(name)
	}
	return out
}

func (p *PersonInput) fieldPtr(name string) *string {
	switch name {
	case FieldNome:
		return &p.Nome
	case FieldDataNascimento:
		return &p.DataNascimento
	case FieldNomeMae:
		return &p.NomeMae
	case FieldRG:
		return &p.RG
	case FieldCPF:
		return &p.CPF
	case FieldCEP:
		return &p.CEP
	case FieldLogradouro:
		return &p.Logradouro
	case FieldNumero:
		return &p.Numero
	case FieldComplemento:
		return &p.Complemento
	case FieldBairro:
		return &p.Bairro
	case FieldCidade:
		return &p.Cidade
	case FieldEstado:
		return &p.Estado
	case FieldTelefone:
		return &p.Telefone
	case FieldEmail:
		return &p.Email
	default:
		return nil
	}
}

// Person is a stored person record
type Person struct {
	ID           string `bson:"_id" json:"id" example:"6f1c2b8e-3d4a-4c55-9a77-0b8f5e2d1a90"`
	PersonInput  `bson:",inline"`
	TelefoneE164 string    `bson:"telefone_e164,omitempty" json:"telefoneE164,omitempty" example:"+5511987654321"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// Pagination describes one page of a listing
type Pagination struct {
	TotalItems   int64 `json:"totalItems"`
	TotalPages   int   `json:"totalPages"`
	CurrentPage  int   `json:"currentPage"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

// NewPagination computes the page count for total items split into pages of limit
func NewPagination(total int64, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		TotalItems:   total,
		TotalPages:   pages,
		CurrentPage:  page,
		ItemsPerPage: limit,
	}
}

// PersonListResponse represents a page of persons
type PersonListResponse struct {
	Data       []Person   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// PersonFilter holds listing parameters
type PersonFilter struct {
	Page   int
	Limit  int
	Search string
}

// Offset returns the number of records skipped before the page
func (f PersonFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// AddressLookupResult is the address returned by a postal code lookup
type AddressLookupResult struct {
	CEP        string `json:"cep,omitempty" example:"01001000"`
	Logradouro string `json:"logradouro" example:"Praça da Sé"`
	Bairro     string `json:"bairro" example:"Sé"`
	Cidade     string `json:"cidade" example:"São Paulo"`
	Estado     string `json:"estado" example:"SP"`
}
