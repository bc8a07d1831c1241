package reel

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-canvas-server/modules/common/model"
)

// notifierSpy - 발행된 상태 전이 기록
type notifierSpy struct {
	updates []string
}

func (n *notifierSpy) Publish(jobID, status, message string) {
	n.updates = append(n.updates, status)
}

func setupWorker(t *testing.T, api *asyncSpy, objects *objectSpy, timeout time.Duration) (*Worker, *Queue, *notifierSpy) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	queue := NewQueue(rdb)
	notifier := &notifierSpy{}
	worker := NewWorker(rdb, queue, newTestService(api, objects), notifier, timeout)
	return worker, queue, notifier
}

func TestWorkerCompletesJob(t *testing.T) {
	api := &asyncSpy{
		statuses:    []types.AsyncInvokeStatus{types.AsyncInvokeStatusCompleted},
		outputS3URI: "s3://reel-bucket/outputs/abc123xyz",
	}
	worker, queue, notifier := setupWorker(t, api, &objectSpy{data: []byte("mp4")}, 0)
	ctx := context.Background()

	jobID, err := queue.Enqueue(ctx, VideoParams{Text: "dolly forward"})
	require.NoError(t, err)

	worker.processJob(ctx, jobID)

	job, err := queue.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, job.Status)
	assert.NotEmpty(t, job.VideoBase64)
	assert.Empty(t, job.ErrorMessage)

	assert.Equal(t, []string{model.StatusProcessing, model.StatusCompleted}, notifier.updates)
	assert.Equal(t, int64(1), worker.Processed())
}

func TestWorkerMarksJobFailed(t *testing.T) {
	api := &asyncSpy{
		statuses:   []types.AsyncInvokeStatus{types.AsyncInvokeStatusFailed},
		failureMsg: "content filter triggered",
	}
	worker, queue, notifier := setupWorker(t, api, &objectSpy{}, 0)
	ctx := context.Background()

	jobID, err := queue.Enqueue(ctx, VideoParams{Text: "dolly forward"})
	require.NoError(t, err)

	worker.processJob(ctx, jobID)

	job, err := queue.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "content filter triggered")

	assert.Equal(t, []string{model.StatusProcessing, model.StatusFailed}, notifier.updates)
	assert.Equal(t, int64(0), worker.Processed())
}

func TestWorkerMarksJobTimedOut(t *testing.T) {
	// 작업이 절대 끝나지 않는 상황: 데드라인이 폴링을 끊어야 함
	api := &asyncSpy{
		statuses: []types.AsyncInvokeStatus{types.AsyncInvokeStatusInProgress},
	}
	worker, queue, notifier := setupWorker(t, api, &objectSpy{}, 30*time.Millisecond)
	ctx := context.Background()

	jobID, err := queue.Enqueue(ctx, VideoParams{Text: "dolly forward"})
	require.NoError(t, err)

	worker.processJob(ctx, jobID)

	job, err := queue.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusTimedOut, job.Status, "deadline is not a remote failure")

	assert.Equal(t, []string{model.StatusProcessing, model.StatusTimedOut}, notifier.updates)
}
