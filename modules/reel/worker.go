package reel

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"nova-canvas-server/modules/common/model"
)

// Notifier - 작업 상태 변화를 구독자에게 전달 (progress hub)
type Notifier interface {
	Publish(jobID, status, message string)
}

// Worker - Reel 비디오 큐 워커
type Worker struct {
	rdb       *redis.Client
	queue     *Queue
	service   *Service
	notifier  Notifier
	timeout   time.Duration // 0 = 무제한
	processed atomic.Int64
}

// NewWorker - Worker 생성
func NewWorker(rdb *redis.Client, queue *Queue, service *Service, notifier Notifier, timeout time.Duration) *Worker {
	return &Worker{
		rdb:      rdb,
		queue:    queue,
		service:  service,
		notifier: notifier,
		timeout:  timeout,
	}
}

// Processed - 처리 완료된 작업 수 (metrics용)
func (w *Worker) Processed() int64 {
	return w.processed.Load()
}

// StartWorker - Redis 큐 감시 시작
func (w *Worker) StartWorker() {
	log.Println("🔄 [Reel Worker] Starting video queue worker...")
	log.Printf("👀 [Reel Worker] Watching queue: %s", queueKey)

	ctx := context.Background()

	// 무한 루프로 Queue 감시
	for {
		// Job 받기 (BRPOP - Blocking Right Pop)
		result, err := w.rdb.BRPop(ctx, 0, queueKey).Result()
		if err != nil {
			log.Printf("❌ [Reel Worker] Redis BRPOP error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		// result[0]은 큐 이름, result[1]이 실제 job_id
		jobID := result[1]
		log.Printf("🎯 [Reel Worker] Received video job: %s", jobID)

		// Job 처리 (동기 처리 - 비디오 생성은 시간이 오래 걸림)
		w.processJob(ctx, jobID)
	}
}

// processJob - 비디오 작업 처리
func (w *Worker) processJob(ctx context.Context, jobID string) {
	job, err := w.queue.Get(ctx, jobID)
	if err != nil {
		log.Printf("❌ [Reel Worker] Failed to fetch job %s: %v", jobID, err)
		return
	}

	w.setStatus(ctx, job, model.StatusProcessing, "")

	// 타임아웃이 설정돼 있으면 데드라인 적용
	jobCtx := ctx
	cancel := func() {}
	if w.timeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, w.timeout)
	}
	defer cancel()

	video, err := w.service.GenerateVideo(jobCtx, job.Params)
	if err != nil {
		// 데드라인 초과는 원격 실패와 구분되는 terminal 상태
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("⏰ [Reel Worker] Job %s timed out: %v", jobID, err)
			w.setStatus(ctx, job, model.StatusTimedOut, err.Error())
			return
		}
		log.Printf("❌ [Reel Worker] Job %s failed: %v", jobID, err)
		w.setStatus(ctx, job, model.StatusFailed, err.Error())
		return
	}

	job.VideoBase64 = video
	w.setStatus(ctx, job, model.StatusCompleted, "")
	w.processed.Add(1)

	log.Printf("✅ [Reel Worker] Video job %s completed successfully", jobID)
}

// setStatus - 작업 상태 업데이트 + 구독자 알림
func (w *Worker) setStatus(ctx context.Context, job *Job, status, errorMessage string) {
	job.Status = status
	job.ErrorMessage = errorMessage

	if err := w.queue.save(ctx, job); err != nil {
		log.Printf("⚠️ [Reel Worker] Failed to update job %s: %v", job.JobID, err)
	}

	if w.notifier != nil {
		w.notifier.Publish(job.JobID, status, errorMessage)
	}
}
