package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"cv-intake/internal/repositories"
)

// RescoreWorker periodically picks up candidates that were left with the
// "ML service unavailable" placeholder and retries scoring for them in the
// background. Ingestion itself makes exactly one scoring attempt; this
// worker is the only retry path.
type RescoreWorker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(candidateID uuid.UUID)
}

type rescoreWorker struct {
	repo        repositories.CandidateRepository
	scorer      ScoringClient
	interval    time.Duration
	concurrency int
	batchSize   int
	jobQueue    chan uuid.UUID
	wg          sync.WaitGroup
	stopChan    chan struct{}
}

func NewRescoreWorker(
	repo repositories.CandidateRepository,
	scorer ScoringClient,
	interval time.Duration,
	concurrency int,
	batchSize int,
) RescoreWorker {
	return &rescoreWorker{
		repo:        repo,
		scorer:      scorer,
		interval:    interval,
		concurrency: concurrency,
		batchSize:   batchSize,
		jobQueue:    make(chan uuid.UUID, 100),
		stopChan:    make(chan struct{}),
	}
}

// Start implements RescoreWorker.
func (w *rescoreWorker) Start(ctx context.Context) {
	log.Printf("🚀 Starting rescore worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollUnscored(ctx)
}

// Stop implements RescoreWorker.
func (w *rescoreWorker) Stop() {
	log.Println("🛑 Stopping rescore worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Rescore worker stopped")
}

// EnqueueJob implements RescoreWorker.
func (w *rescoreWorker) EnqueueJob(candidateID uuid.UUID) {
	select {
	case w.jobQueue <- candidateID:
	case <-w.stopChan:
		log.Printf("⚠️  Rescore worker stopped, cannot enqueue candidate %s\n", candidateID)
	}
}

func (w *rescoreWorker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Rescore worker #%d stopped\n", workerID)
			return
		case candidateID := <-w.jobQueue:
			if err := w.rescore(ctx, candidateID); err != nil {
				log.Printf("❌ Rescore worker #%d failed on candidate %s: %v\n", workerID, candidateID, err)
			}
		}
	}
}

func (w *rescoreWorker) rescore(ctx context.Context, candidateID uuid.UUID) error {
	candidate, err := w.repo.FindByID(candidateID)
	if err != nil {
		return err
	}

	result := w.scorer.Score(ctx, candidate)
	if result.Score == nil {
		// Still unavailable; leave the placeholder untouched and try again
		// on a later pass.
		log.Printf("⚠️  Rescoring candidate %s still unsuccessful\n", candidateID)
		return nil
	}

	if _, err := w.repo.UpdateScoring(candidateID, result.Features, result.Score, result.Recommendation); err != nil {
		return err
	}

	log.Printf("✅ Candidate %s rescored successfully\n", candidateID)
	return nil
}

func (w *rescoreWorker) pollUnscored(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Rescore poller stopped")
			return
		case <-ticker.C:
			candidates, err := w.repo.FindByRecommendation(RecommendationServiceUnavailable, w.batchSize)
			if err != nil {
				log.Printf("⚠️  Failed to fetch candidates for rescoring: %v\n", err)
				continue
			}

			if len(candidates) > 0 {
				log.Printf("📋 Found %d candidates awaiting rescore\n", len(candidates))
			}

			for _, candidate := range candidates {
				w.EnqueueJob(candidate.ID)
			}
		}
	}
}
