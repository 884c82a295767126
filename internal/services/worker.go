package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hareesh182003/Interview-Agent/internal/repositories"
)

const (
	indexQueueSize = 100
	pollBatchSize  = 10
)

// Worker indexes analysis sessions in the background.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(sessionID uuid.UUID)
}

type worker struct {
	sessionRepo  repositories.AnalysisSessionRepository
	indexService IndexService
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

func NewWorker(
	sessionRepo repositories.AnalysisSessionRepository,
	indexService IndexService,
	concurrency int,
	pollInterval time.Duration,
) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &worker{
		sessionRepo:  sessionRepo,
		indexService: indexService,
		jobQueue:     make(chan uuid.UUID, indexQueueSize),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting index worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollUnindexed(ctx)

	log.Println("✅ Index worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping index worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Index worker stopped")
	})
}

// EnqueueJob never blocks; a session dropped on a full queue is picked up
// by the poller because it is still unindexed.
func (w *worker) EnqueueJob(sessionID uuid.UUID) {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Index worker stopped, cannot enqueue session %s\n", sessionID)
	case w.jobQueue <- sessionID:
		log.Printf("📥 Session %s enqueued for indexing\n", sessionID)
	default:
		log.Printf("⚠️  Index queue full, session %s left for the poller\n", sessionID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Index worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			return
		case sessionID := <-w.jobQueue:
			if err := w.indexService.IndexSession(ctx, sessionID); err != nil {
				log.Printf("❌ Index worker #%d failed on session %s: %v\n", workerID, sessionID, err)
			}
		}
	}
}

func (w *worker) pollUnindexed(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Unindexed sessions poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions, err := w.sessionRepo.FindUnindexed(pollBatchSize)
			if err != nil {
				log.Printf("⚠️  Failed to fetch unindexed sessions: %v\n", err)
				continue
			}

			if len(sessions) > 0 {
				log.Printf("📋 Found %d unindexed sessions\n", len(sessions))
			}

			for _, session := range sessions {
				w.EnqueueJob(session.ID)
			}
		}
	}
}
