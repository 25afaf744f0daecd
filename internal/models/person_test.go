package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPersonInput_FieldAccessors(t *testing.T) {
	var p PersonInput

	for _, name := range FieldNames() {
		require.True(t, p.SetField(name, "v-"+name), name)
	}
	for _, name := range FieldNames() {
		got, ok := p.Field(name)
		assert.True(t, ok)
		assert.Equal(t, "v-"+name, got)
	}

	assert.Equal(t, "v-nomeMae", p.NomeMae)
	assert.Equal(t, "v-dataNascimento", p.DataNascimento)

	_, ok := p.Field("id")
	assert.False(t, ok)
	assert.False(t, p.SetField("unknown", "x"))
}

func TestFieldNames(t *testing.T) {
	names := FieldNames()
	require.Len(t, names, 14)
	assert.Equal(t, FieldNome, names[0])
	assert.Equal(t, FieldEmail, names[len(names)-1])

	// callers get a copy
	names[0] = "changed"
	assert.Equal(t, FieldNome, FieldNames()[0])

	assert.True(t, IsPersonField("complemento"))
	assert.False(t, IsPersonField("id"))
}

func TestPersonInput_Map(t *testing.T) {
	p := PersonInput{Nome: "João Silva", CPF: "52998224725"}
	m := p.Map()
	assert.Len(t, m, 14)
	assert.Equal(t, "João Silva", m["nome"])
	assert.Equal(t, "52998224725", m["cpf"])
	assert.Equal(t, "", m["email"])
}

func TestPerson_JSONFlattensInput(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := Person{
		ID:          "abc",
		PersonInput: PersonInput{Nome: "João Silva", DataNascimento: "1990-05-20"},
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "abc", m["id"])
	assert.Equal(t, "João Silva", m["nome"])
	assert.Equal(t, "1990-05-20", m["dataNascimento"])
	assert.NotContains(t, m, "complemento")
	assert.NotContains(t, m, "telefoneE164")
	assert.Contains(t, m, "createdAt")
}

func TestPerson_BSONInlinesInput(t *testing.T) {
	p := Person{ID: "abc", PersonInput: PersonInput{NomeMae: "Maria", CPF: "52998224725"}}

	raw, err := bson.Marshal(p)
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, "abc", m["_id"])
	assert.Equal(t, "Maria", m["nome_mae"])
	assert.Equal(t, "52998224725", m["cpf"])
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total       int64
		page, limit int
		wantPages   int
	}{
		{total: 0, page: 1, limit: 10, wantPages: 0},
		{total: 10, page: 1, limit: 10, wantPages: 1},
		{total: 11, page: 2, limit: 10, wantPages: 2},
		{total: 5, page: 1, limit: 0, wantPages: 0},
	}
	for _, tt := range tests {
		p := NewPagination(tt.total, tt.page, tt.limit)
		assert.Equal(t, tt.wantPages, p.TotalPages)
		assert.Equal(t, tt.total, p.TotalItems)
		assert.Equal(t, tt.page, p.CurrentPage)
		assert.Equal(t, tt.limit, p.ItemsPerPage)
	}
}

func TestPersonFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, PersonFilter{Page: 0, Limit: 10}.Offset())
	assert.Equal(t, 0, PersonFilter{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, PersonFilter{Page: 3, Limit: 10}.Offset())
}
