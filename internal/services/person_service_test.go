package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/redisclient"
	"github.com/pablogoliveira/personia-hub/internal/utils"
	"github.com/pablogoliveira/personia-hub/internal/validation"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type personServiceFixture struct {
	service *PersonService
	repo    *MemoryPersonRepository
	cache   *memoryCache
	audit   *recordingAudit
}

func newPersonServiceFixture() *personServiceFixture {
	f := &personServiceFixture{
		repo:  NewMemoryPersonRepository(),
		cache: newMemoryCache(),
		audit: &recordingAudit{},
	}
	f.service = NewPersonService(f.repo, zap.NewNop(),
		WithPersonCache(f.cache, 10*time.Minute),
		WithAuditLogger(f.audit),
		WithPersonClock(func() time.Time { return testNow }),
	)
	return f
}

func TestSanitizePersonInput(t *testing.T) {
	in := validPersonInput(" 529.982.247-25 ", " Joao.Silva@Example.COM ")
	in.Nome = "  João Silva  "
	in.DataNascimento = "20/05/1990"

	out := SanitizePersonInput(in)
	assert.Equal(t, "João Silva", out.Nome)
	assert.Equal(t, "52998224725", out.CPF)
	assert.Equal(t, "01001000", out.CEP)
	assert.Equal(t, "123456789", out.RG)
	assert.Equal(t, "11987654321", out.Telefone)
	assert.Equal(t, "SP", out.Estado)
	assert.Equal(t, "joao.silva@example.com", out.Email)
	assert.Equal(t, "1990-05-20", out.DataNascimento)
}

func TestCreate_CanonicalizesBeforeValidating(t *testing.T) {
	f := newPersonServiceFixture()
	in := validPersonInput("52998224725", "joao@example.com")
	in.Estado = " sp "

	// the shared rule counts raw characters, the service applies it to the
	// canonical value
	require.NotEmpty(t, validation.ValidateField(models.FieldEstado, in.Estado))

	person, err := f.service.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "SP", person.Estado)
	assert.Empty(t, validation.ValidateField(models.FieldEstado, person.Estado))
}

func TestNormalizeFilter(t *testing.T) {
	tests := []struct {
		name     string
		in       models.PersonFilter
		expected models.PersonFilter
	}{
		{"defaults", models.PersonFilter{}, models.PersonFilter{Page: 1, Limit: DefaultPageLimit}},
		{"keeps valid values", models.PersonFilter{Page: 3, Limit: 20, Search: " ana "}, models.PersonFilter{Page: 3, Limit: 20, Search: "ana"}},
		{"caps limit", models.PersonFilter{Page: 1, Limit: 1000}, models.PersonFilter{Page: 1, Limit: MaxPageLimit}},
		{"negative page", models.PersonFilter{Page: -2, Limit: 5}, models.PersonFilter{Page: 1, Limit: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeFilter(tt.in))
		})
	}
}

func TestPersonService_Create(t *testing.T) {
	ctx := ContextWithAudit(context.Background(), AuditContext{RequestID: "req-1", IPAddress: "10.0.0.1"})

	t.Run("stores sanitized person", func(t *testing.T) {
		f := newPersonServiceFixture()

		person, err := f.service.Create(ctx, validPersonInput("529.982.247-25", "Joao@Example.com"))
		require.NoError(t, err)

		assert.True(t, utils.IsValidUUID(person.ID))
		assert.Equal(t, "52998224725", person.CPF)
		assert.Equal(t, "joao@example.com", person.Email)
		assert.Equal(t, "+5511987654321", person.TelefoneE164)
		assert.Equal(t, testNow, person.CreatedAt)
		assert.Equal(t, testNow, person.UpdatedAt)

		stored, err := f.repo.FindByID(ctx, person.ID)
		require.NoError(t, err)
		assert.Equal(t, person, stored)

		logs := f.audit.entries()
		require.Len(t, logs, 1)
		assert.Equal(t, AuditActionCreate, logs[0].Action)
		assert.Equal(t, AuditResourcePerson, logs[0].Resource)
		assert.Equal(t, person.ID, logs[0].ResourceID)
		assert.Equal(t, "529.***.247-**", logs[0].CPF)
		assert.Equal(t, "req-1", logs[0].RequestID)
		assert.Equal(t, "10.0.0.1", logs[0].IPAddress)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newPersonServiceFixture()
		in := validPersonInput("12345678901", "not-an-email")
		in.Estado = ""

		_, err := f.service.Create(ctx, in)
		var validationErr *DomainValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, models.FieldErrors{
			models.FieldCPF:    validation.MsgCPFInvalid,
			models.FieldEmail:  validation.MsgEmailInvalid,
			models.FieldEstado: validation.MsgEstadoRequired,
		}, validationErr.Fields)
		assert.Contains(t, err.Error(), "cpf: CPF inválido")
		assert.Empty(t, f.audit.entries())
	})

	t.Run("duplicate cpf", func(t *testing.T) {
		f := newPersonServiceFixture()
		_, err := f.service.Create(ctx, validPersonInput("52998224725", "a@example.com"))
		require.NoError(t, err)

		_, err = f.service.Create(ctx, validPersonInput("529.982.247-25", "b@example.com"))
		assert.ErrorIs(t, err, models.ErrCPFAlreadyExists)
	})

	t.Run("duplicate email ignores case", func(t *testing.T) {
		f := newPersonServiceFixture()
		_, err := f.service.Create(ctx, validPersonInput("52998224725", "a@example.com"))
		require.NoError(t, err)

		_, err = f.service.Create(ctx, validPersonInput("11144477735", "A@EXAMPLE.COM"))
		assert.ErrorIs(t, err, models.ErrEmailAlreadyExists)
	})
}

func TestPersonService_Get(t *testing.T) {
	ctx := context.Background()
	f := newPersonServiceFixture()

	created, err := f.service.Create(ctx, validPersonInput("52998224725", "joao@example.com"))
	require.NoError(t, err)

	t.Run("reads through the cache", func(t *testing.T) {
		person, err := f.service.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, person.ID)
		assert.True(t, f.cache.has(personCacheKey(created.ID)))
		assert.Equal(t, 10*time.Minute, f.cache.ttls[personCacheKey(created.ID)])

		// served from cache even if the repository loses the record
		f.repo.mu.Lock()
		delete(f.repo.persons, created.ID)
		f.repo.mu.Unlock()

		cached, err := f.service.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.CPF, cached.CPF)
		assert.True(t, created.CreatedAt.Equal(cached.CreatedAt))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.service.Get(ctx, "6f1c2b8e-3d4a-4c55-9a77-0b8f5e2d1a90")
		assert.ErrorIs(t, err, models.ErrPersonNotFound)
	})
}

func TestPersonService_GetDegradesWhenCacheIsDown(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPersonRepository()
	down := redisclient.NewClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer down.Close()

	service := NewPersonService(repo, zap.NewNop(), WithPersonCache(down, time.Minute))
	created, err := service.Create(ctx, validPersonInput("52998224725", "joao@example.com"))
	require.NoError(t, err)

	person, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, person.ID)
}

func TestPersonService_List(t *testing.T) {
	ctx := context.Background()
	f := newPersonServiceFixture()

	inputs := []models.PersonInput{
		validPersonInput("52998224725", "joao@example.com"),
		validPersonInput("11144477735", "ana@example.com"),
		validPersonInput("39053344705", "bruno@example.com"),
	}
	inputs[1].Nome = "Ana Souza"
	inputs[2].Nome = "Bruno Lima"
	for _, in := range inputs {
		_, err := f.service.Create(ctx, in)
		require.NoError(t, err)
	}

	t.Run("first page sorted by name", func(t *testing.T) {
		resp, err := f.service.List(ctx, models.PersonFilter{Page: 1, Limit: 2})
		require.NoError(t, err)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "Ana Souza", resp.Data[0].Nome)
		assert.Equal(t, "Bruno Lima", resp.Data[1].Nome)
		assert.Equal(t, models.Pagination{TotalItems: 3, TotalPages: 2, CurrentPage: 1, ItemsPerPage: 2}, resp.Pagination)
	})

	t.Run("second page", func(t *testing.T) {
		resp, err := f.service.List(ctx, models.PersonFilter{Page: 2, Limit: 2})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "João Silva", resp.Data[0].Nome)
	})

	t.Run("search", func(t *testing.T) {
		resp, err := f.service.List(ctx, models.PersonFilter{Search: "BRUNO"})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "39053344705", resp.Data[0].CPF)
		assert.Equal(t, DefaultPageLimit, resp.Pagination.ItemsPerPage)
	})
}

func TestPersonService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps creation time and invalidates the cache", func(t *testing.T) {
		f := newPersonServiceFixture()
		created, err := f.service.Create(ctx, validPersonInput("52998224725", "joao@example.com"))
		require.NoError(t, err)
		_, err = f.service.Get(ctx, created.ID)
		require.NoError(t, err)

		later := testNow.Add(time.Hour)
		f.service.now = func() time.Time { return later }

		in := validPersonInput("52998224725", "joao@example.com")
		in.Numero = "200"
		updated, err := f.service.Update(ctx, created.ID, in)
		require.NoError(t, err)

		assert.Equal(t, "200", updated.Numero)
		assert.Equal(t, testNow, updated.CreatedAt)
		assert.Equal(t, later, updated.UpdatedAt)
		assert.False(t, f.cache.has(personCacheKey(created.ID)))

		logs := f.audit.entries()
		require.Len(t, logs, 2)
		assert.Equal(t, AuditActionUpdate, logs[1].Action)
	})

	t.Run("conflicts with another person's email", func(t *testing.T) {
		f := newPersonServiceFixture()
		_, err := f.service.Create(ctx, validPersonInput("52998224725", "joao@example.com"))
		require.NoError(t, err)
		other, err := f.service.Create(ctx, validPersonInput("11144477735", "ana@example.com"))
		require.NoError(t, err)

		_, err = f.service.Update(ctx, other.ID, validPersonInput("11144477735", "joao@example.com"))
		assert.ErrorIs(t, err, models.ErrEmailAlreadyExists)
	})

	t.Run("not found", func(t *testing.T) {
		f := newPersonServiceFixture()
		_, err := f.service.Update(ctx, "missing", validPersonInput("52998224725", "joao@example.com"))
		assert.ErrorIs(t, err, models.ErrPersonNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newPersonServiceFixture()
		created, err := f.service.Create(ctx, validPersonInput("52998224725", "joao@example.com"))
		require.NoError(t, err)

		in := validPersonInput("52998224725", "joao@example.com")
		in.Telefone = "12087654321"
		_, err = f.service.Update(ctx, created.ID, in)

		var validationErr *DomainValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, validation.MsgTelefoneMobilePrefix, validationErr.Fields[models.FieldTelefone])
	})
}

func TestPersonService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newPersonServiceFixture()

	created, err := f.service.Create(ctx, validPersonInput("52998224725", "joao@example.com"))
	require.NoError(t, err)
	_, err = f.service.Get(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, created.ID))
	assert.False(t, f.cache.has(personCacheKey(created.ID)))

	_, err = f.service.Get(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrPersonNotFound)

	assert.ErrorIs(t, f.service.Delete(ctx, created.ID), models.ErrPersonNotFound)

	logs := f.audit.entries()
	require.Len(t, logs, 2)
	assert.Equal(t, AuditActionDelete, logs[1].Action)
	assert.Equal(t, "529.***.247-**", logs[1].CPF)
}
