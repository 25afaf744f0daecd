package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pablogoliveira/personia-hub/internal/observability"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Audit actions and resources
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"

	AuditResourcePerson = "person"
)

// AuditLog is one audit entry. CPF is always stored masked.
type AuditLog struct {
	Action     string            `bson:"action" json:"action"`
	Resource   string            `bson:"resource" json:"resource"`
	ResourceID string            `bson:"resource_id" json:"resource_id"`
	CPF        string            `bson:"cpf,omitempty" json:"cpf,omitempty"`
	IPAddress  string            `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent  string            `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	RequestID  string            `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Timestamp  time.Time         `bson:"timestamp" json:"timestamp"`
	Metadata   map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// AuditContext carries the request information attached to audit entries
type AuditContext struct {
	IPAddress string
	UserAgent string
	RequestID string
}

type auditContextKey struct{}

// ContextWithAudit returns a copy of ctx carrying ac
func ContextWithAudit(ctx context.Context, ac AuditContext) context.Context {
	return context.WithValue(ctx, auditContextKey{}, ac)
}

// AuditFromContext returns the AuditContext stored in ctx, if any
func AuditFromContext(ctx context.Context) AuditContext {
	ac, _ := ctx.Value(auditContextKey{}).(AuditContext)
	return ac
}

// AuditSink persists batches of audit entries
type AuditSink interface {
	WriteAuditLogs(ctx context.Context, logs []AuditLog) error
}

// MongoAuditSink writes audit entries to a MongoDB collection
type MongoAuditSink struct {
	collection *mongo.Collection
}

// NewMongoAuditSink creates a sink over collection
func NewMongoAuditSink(collection *mongo.Collection) *MongoAuditSink {
	return &MongoAuditSink{collection: collection}
}

// WriteAuditLogs bulk inserts logs, unordered
func (s *MongoAuditSink) WriteAuditLogs(ctx context.Context, logs []AuditLog) error {
	operations := make([]mongo.WriteModel, 0, len(logs))
	for _, log := range logs {
		operations = append(operations, mongo.NewInsertOneModel().SetDocument(log))
	}
	if _, err := s.collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to insert audit log batch: %w", err)
	}
	return nil
}

// LogAuditSink writes audit entries to the structured log
type LogAuditSink struct {
	logger *zap.Logger
}

// NewLogAuditSink creates a sink over logger
func NewLogAuditSink(logger *zap.Logger) *LogAuditSink {
	return &LogAuditSink{logger: logger}
}

// WriteAuditLogs logs every entry at info level
func (s *LogAuditSink) WriteAuditLogs(ctx context.Context, logs []AuditLog) error {
	for _, log := range logs {
		s.logger.Info("audit",
			zap.String("action", log.Action),
			zap.String("resource", log.Resource),
			zap.String("resource_id", log.ResourceID),
			zap.String("cpf", log.CPF),
			zap.String("request_id", log.RequestID),
			zap.Time("timestamp", log.Timestamp))
	}
	return nil
}

const (
	auditBatchSize     = 100
	auditFlushInterval = 100 * time.Millisecond
	auditWriteTimeout  = 5 * time.Second
)

// AuditWorker writes audit entries asynchronously in batches
type AuditWorker struct {
	sink      AuditSink
	logger    *zap.Logger
	auditChan chan AuditLog
	workers   int
	wg        sync.WaitGroup
	stopOnce  sync.Once
	mu        sync.RWMutex
	stopped   bool
}

// NewAuditWorker creates a worker pool with the given size and buffer.
// Start must be called before entries are written.
func NewAuditWorker(sink AuditSink, workers, bufferSize int, logger *zap.Logger) *AuditWorker {
	if workers < 1 {
		workers = 1
	}
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &AuditWorker{
		sink:      sink,
		logger:    logger,
		auditChan: make(chan AuditLog, bufferSize),
		workers:   workers,
	}
}

// Start launches the workers
func (aw *AuditWorker) Start() {
	aw.wg.Add(aw.workers)
	for i := 0; i < aw.workers; i++ {
		go func() {
			defer aw.wg.Done()
			aw.processAuditLogs()
		}()
	}

	aw.logger.Info("audit worker started",
		zap.Int("workers", aw.workers),
		zap.Int("buffer_size", cap(aw.auditChan)))
}

func (aw *AuditWorker) processAuditLogs() {
	ticker := time.NewTicker(auditFlushInterval)
	defer ticker.Stop()

	var batch []AuditLog
	for {
		select {
		case log, ok := <-aw.auditChan:
			if !ok {
				aw.flushBatch(batch)
				return
			}
			batch = append(batch, log)
			if len(batch) >= auditBatchSize {
				aw.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				aw.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (aw *AuditWorker) flushBatch(batch []AuditLog) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := aw.sink.WriteAuditLogs(ctx, batch); err != nil {
		observability.AuditEvents.WithLabelValues("error").Add(float64(len(batch)))
		aw.logger.Error("failed to write audit log batch",
			zap.Error(err),
			zap.Int("batch_size", len(batch)))
		return
	}
	observability.AuditEvents.WithLabelValues("written").Add(float64(len(batch)))
}

// Log enqueues an entry without blocking. When the buffer is full the entry
// is written synchronously.
func (aw *AuditWorker) Log(ctx context.Context, log AuditLog) {
	aw.mu.RLock()
	defer aw.mu.RUnlock()

	if !aw.stopped {
		select {
		case aw.auditChan <- log:
			return
		default:
			aw.logger.Warn("audit channel full, writing synchronously",
				zap.String("action", log.Action),
				zap.String("resource_id", log.ResourceID))
		}
	}
	aw.flushBatch([]AuditLog{log})
}

// Stop drains pending entries and waits for the workers to exit
func (aw *AuditWorker) Stop() {
	aw.stopOnce.Do(func() {
		aw.mu.Lock()
		aw.stopped = true
		close(aw.auditChan)
		aw.mu.Unlock()
		aw.wg.Wait()
	})
}
