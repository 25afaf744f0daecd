package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingSink struct {
	mu    sync.Mutex
	calls int
}

func (s *failingSink) WriteAuditLogs(ctx context.Context, logs []AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("sink unavailable")
}

func TestAuditContext(t *testing.T) {
	assert.Equal(t, AuditContext{}, AuditFromContext(context.Background()))

	ac := AuditContext{IPAddress: "10.0.0.1", UserAgent: "curl", RequestID: "req-1"}
	assert.Equal(t, ac, AuditFromContext(ContextWithAudit(context.Background(), ac)))
}

func TestAuditWorker_StopDrainsPending(t *testing.T) {
	sink := &recordingAudit{}
	worker := NewAuditWorker(sink, 2, 500, zap.NewNop())
	worker.Start()

	for i := 0; i < 250; i++ {
		worker.Log(context.Background(), AuditLog{
			Action:     AuditActionCreate,
			Resource:   AuditResourcePerson,
			ResourceID: fmt.Sprintf("id-%d", i),
		})
	}
	worker.Stop()

	entries := sink.entries()
	require.Len(t, entries, 250)
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[e.ResourceID] = true
	}
	assert.Len(t, seen, 250)
}

func TestAuditWorker_FlushesOnInterval(t *testing.T) {
	sink := &recordingAudit{}
	worker := NewAuditWorker(sink, 1, 10, zap.NewNop())
	worker.Start()
	defer worker.Stop()

	worker.Log(context.Background(), AuditLog{Action: AuditActionDelete, ResourceID: "abc"})

	assert.Eventually(t, func() bool { return len(sink.entries()) == 1 }, time.Second, 10*time.Millisecond)
}

func TestAuditWorker_LogAfterStopWritesSynchronously(t *testing.T) {
	sink := &recordingAudit{}
	worker := NewAuditWorker(sink, 1, 1, zap.NewNop())
	worker.Start()
	worker.Stop()
	// idempotent
	worker.Stop()

	worker.Log(context.Background(), AuditLog{Action: AuditActionUpdate, ResourceID: "late"})
	entries := sink.entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "late", entries[0].ResourceID)
}

func TestAuditWorker_SinkErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	sink := &failingSink{}
	worker := NewAuditWorker(sink, 1, 10, zap.New(core))
	worker.Start()

	worker.Log(context.Background(), AuditLog{Action: AuditActionCreate, ResourceID: "x"})
	worker.Stop()

	assert.Equal(t, 1, sink.calls)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to write audit log batch", logs.All()[0].Message)
}

func TestLogAuditSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewLogAuditSink(zap.New(core))

	err := sink.WriteAuditLogs(context.Background(), []AuditLog{
		{Action: AuditActionCreate, Resource: AuditResourcePerson, ResourceID: "1", CPF: "529.***.***-25"},
		{Action: AuditActionDelete, Resource: AuditResourcePerson, ResourceID: "2"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, logs.Len())

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, AuditActionCreate, fields["action"])
	assert.Equal(t, "1", fields["resource_id"])
}

func TestAuditWorker_LogSinkBacksPersonService(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	worker := NewAuditWorker(NewLogAuditSink(zap.New(core)), 1, 10, zap.NewNop())
	worker.Start()

	var audit AuditLogger = worker
	svc := NewPersonService(NewMemoryPersonRepository(), zap.NewNop(), WithAuditLogger(audit))

	created, err := svc.Create(context.Background(), validPersonInput("52998224725", "joao@example.com"))
	require.NoError(t, err)
	worker.Stop()

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, AuditActionCreate, fields["action"])
	assert.Equal(t, created.ID, fields["resource_id"])
	assert.Equal(t, "529.***.247-**", fields["cpf"])
}
