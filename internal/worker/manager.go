package worker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"twii/internal/queue"
)

const (
	DefaultWorkerCount  = 2
	DefaultBatchSize    = 10
	DefaultBlockTimeout = 5 * time.Second
)

// Manager runs worker goroutines that consume the media stream.
type Manager struct {
	consumer    queue.Consumer
	handler     *Handler
	workerCount int
	batchSize   int64
	blockTime   time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type ManagerConfig struct {
	WorkerCount  int
	BatchSize    int64
	BlockTimeout time.Duration
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:  DefaultWorkerCount,
		BatchSize:    DefaultBatchSize,
		BlockTimeout: DefaultBlockTimeout,
	}
}

func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}

	return &Manager{
		consumer:    consumer,
		handler:     handler,
		workerCount: cfg.WorkerCount,
		batchSize:   cfg.BatchSize,
		blockTime:   cfg.BlockTimeout,
	}
}

// Start ensures the consumer group and launches the workers. Stop shuts them down.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(m.ctx, queue.StreamMedia, queue.ConsumerGroupMedia); err != nil {
		m.cancel()
		return err
	}

	for i := 1; i <= m.workerCount; i++ {
		m.wg.Add(1)
		go m.runWorker(i)
	}

	log.Info().
		Str("component", "manager").
		Int("workers", m.workerCount).
		Str("stream", queue.StreamMedia).
		Str("group", queue.ConsumerGroupMedia).
		Msg("workers started")
	return nil
}

// Stop cancels the workers and waits for in-flight batches to finish.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	log.Info().Str("component", "manager").Msg("workers stopped")
}

func (m *Manager) runWorker(workerID int) {
	defer m.wg.Done()

	consumerName := consumerNameForWorker(workerID)
	logger := log.With().Str("component", "worker").Str("consumer", consumerName).Logger()

	// Crash recovery: replay what this consumer received but never acked.
	m.processPending(logger, consumerName)

	for {
		select {
		case <-m.ctx.Done():
			logger.Debug().Msg("shutting down")
			return
		default:
			m.processMessages(logger, consumerName)
		}
	}
}

func (m *Manager) processPending(logger zerolog.Logger, consumerName string) {
	for {
		messages, err := m.consumer.ReadPending(m.ctx, queue.StreamMedia, queue.ConsumerGroupMedia, consumerName, m.batchSize)
		if err != nil {
			logger.Error().Err(err).Msg("read pending failed")
			return
		}
		if len(messages) == 0 {
			return
		}
		logger.Info().Int("count", len(messages)).Msg("processing pending messages")
		m.handleMessages(logger, messages)
	}
}

func (m *Manager) processMessages(logger zerolog.Logger, consumerName string) {
	messages, err := m.consumer.Read(m.ctx, queue.StreamMedia, queue.ConsumerGroupMedia, consumerName, m.batchSize, m.blockTime)
	if err != nil {
		if m.ctx.Err() != nil {
			return
		}
		logger.Error().Err(err).Msg("read failed")
		select {
		case <-m.ctx.Done():
		case <-time.After(time.Second):
		}
		return
	}

	if len(messages) > 0 {
		m.handleMessages(logger, messages)
	}
}

// handleMessages acks every message, including failed ones, so a bad key
// cannot loop forever. Cleanup is best-effort.
func (m *Manager) handleMessages(logger zerolog.Logger, messages []queue.Message) {
	for _, msg := range messages {
		if err := m.handler.HandleEvent(m.ctx, msg.Event); err != nil {
			logger.Warn().Err(err).Str("msg_id", msg.ID).Msg("handler error")
		}
		if err := m.consumer.Ack(m.ctx, queue.StreamMedia, queue.ConsumerGroupMedia, msg.ID); err != nil {
			logger.Error().Err(err).Str("msg_id", msg.ID).Msg("ack failed")
		}
	}
}

func consumerNameForWorker(workerID int) string {
	return "worker-" + strconv.Itoa(workerID)
}
