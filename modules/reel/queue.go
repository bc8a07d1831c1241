package reel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"nova-canvas-server/modules/common/model"
)

const (
	queueKey     = "jobs:reel"
	jobKeyPrefix = "jobs:reel:job:"
	jobTTL       = 24 * time.Hour
)

// Queue - Redis 기반 비디오 작업 큐
type Queue struct {
	rdb *redis.Client
}

// NewQueue - Queue 생성
func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

// Enqueue - 작업 레코드 저장 후 큐에 추가, jobID 반환
func (q *Queue) Enqueue(ctx context.Context, p VideoParams) (string, error) {
	jobID := uuid.New().String()
	now := time.Now().Format(time.RFC3339)

	job := &Job{
		JobID:     jobID,
		Params:    p,
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := q.save(ctx, job); err != nil {
		return "", err
	}

	if err := q.rdb.LPush(ctx, queueKey, jobID).Err(); err != nil {
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	return jobID, nil
}

// Get - 작업 레코드 조회
func (q *Queue) Get(ctx context.Context, jobID string) (*Job, error) {
	data, err := q.rdb.Get(ctx, jobKeyPrefix+jobID).Bytes()
	if err != nil {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	// JSON 파싱
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse job record: %w", err)
	}
	return &job, nil
}

// save - 작업 레코드 저장 (TTL 포함 - 큐 배관일 뿐 job history 보존이 아님)
func (q *Queue) save(ctx context.Context, job *Job) error {
	job.UpdatedAt = time.Now().Format(time.RFC3339)

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job record: %w", err)
	}

	if err := q.rdb.Set(ctx, jobKeyPrefix+job.JobID, data, jobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job record: %w", err)
	}
	return nil
}
