package services

import (
	"context"
	"sync"
	"time"

	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/redis/go-redis/v9"
)

// memoryCache is a Cache backed by a map
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	gets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (c *memoryCache) Get(ctx context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if v, ok := c.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	}
	c.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (c *memoryCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.data[k]; ok {
			delete(c.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// recordingAudit collects audit entries
type recordingAudit struct {
	mu   sync.Mutex
	logs []AuditLog
}

func (a *recordingAudit) Log(ctx context.Context, log AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
}

func (a *recordingAudit) WriteAuditLogs(ctx context.Context, logs []AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, logs...)
	return nil
}

func (a *recordingAudit) entries() []AuditLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AuditLog(nil), a.logs...)
}

var testNow = time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC)

func validPersonInput(cpf, email string) models.PersonInput {
	return models.PersonInput{
		Nome:           "João Silva",
		DataNascimento: "1990-05-20",
		NomeMae:        "Maria Silva",
		RG:             "12.345.678-9",
		CPF:            cpf,
		CEP:            "01001-000",
		Logradouro:     "Praça da Sé",
		Numero:         "100",
		Bairro:         "Sé",
		Cidade:         "São Paulo",
		Estado:         "sp",
		Telefone:       "(11) 98765-4321",
		Email:          email,
	}
}
