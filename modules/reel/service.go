package reel

import (
	"context"
	"encoding/base64"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"nova-canvas-server/modules/canvas"
	"nova-canvas-server/modules/common/bedrock"
	"nova-canvas-server/modules/common/model"
	"nova-canvas-server/modules/common/storage"
	"nova-canvas-server/modules/common/utils"
)

// Service - Nova Reel 비디오 생성 서비스 (async job poller)
type Service struct {
	api             bedrock.AsyncInvoker
	store           *storage.Client
	modelID         string
	outputS3URI     string
	PollInterval    time.Duration
	strictNormalize bool
}

// NewService - Service 생성
func NewService(api bedrock.AsyncInvoker, store *storage.Client, modelID, outputS3URI string, pollInterval time.Duration, strictNormalize bool) *Service {
	return &Service{
		api:             api,
		store:           store,
		modelID:         modelID,
		outputS3URI:     outputS3URI,
		PollInterval:    pollInterval,
		strictNormalize: strictNormalize,
	}
}

// GenerateVideo - 비디오 생성 작업 제출 후 완료까지 폴링, 결과를 base64로 반환.
// The call blocks for the full duration of video generation. Cancellation and
// deadlines arrive through ctx and are checked on every loop iteration; a
// transport error during a status read surfaces immediately instead of being
// silently retried.
func (s *Service) GenerateVideo(ctx context.Context, p VideoParams) (string, error) {
	input, err := s.buildModelInput(p)
	if err != nil {
		return "", err
	}

	// 비동기 작업 제출
	start, err := s.api.StartAsyncInvoke(ctx, &bedrockruntime.StartAsyncInvokeInput{
		ModelId:    aws.String(s.modelID),
		ModelInput: document.NewLazyDocument(input),
		OutputDataConfig: &types.AsyncInvokeOutputDataConfigMemberS3OutputDataConfig{
			Value: types.AsyncInvokeS3OutputDataConfig{
				S3Uri: aws.String(s.outputS3URI),
			},
		},
	})
	if err != nil {
		return "", &model.InvocationError{Op: "start async invoke", Err: err}
	}

	arn := aws.ToString(start.InvocationArn)
	jobID := shortJobID(arn) // ARN 마지막 세그먼트 (로깅용)
	log.Printf("🎬 [Reel] Video job submitted: %s", jobID)

	// 완료까지 폴링
	status, err := s.waitForCompletion(ctx, arn, jobID)
	if err != nil {
		return "", err
	}

	// 결과 오브젝트 조회
	return s.retrieveOutput(ctx, status, jobID)
}

// buildModelInput - TEXT_VIDEO model input 생성
func (s *Service) buildModelInput(p VideoParams) (*reelModelInput, error) {
	if p.Text == "" {
		return nil, &model.ValidationError{Field: "text", Reason: "video prompt is required"}
	}

	params := textToVideoParams{Text: p.Text}

	// Seed frame이 있으면 정규화 후 첨부
	if p.Image != "" {
		normalized, err := utils.NormalizeImage(p.Image, s.strictNormalize)
		if err != nil {
			return nil, &model.ValidationError{Field: "image", Reason: err.Error()}
		}
		params.Images = []videoImage{{
			Format: "png",
			Source: videoImageSource{Bytes: normalized},
		}}
	}

	cfg := videoGenerationConfig{
		DurationSeconds: p.DurationSeconds,
		FPS:             p.FPS,
		Dimension:       p.Dimension,
		Seed:            p.Seed,
	}
	if cfg.DurationSeconds == 0 {
		cfg.DurationSeconds = DefaultDurationSeconds
	}
	if cfg.FPS == 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.Dimension == "" {
		cfg.Dimension = DefaultDimension
	}

	return &reelModelInput{
		TaskType:              string(canvas.TaskTextVideo),
		TextToVideoParams:     params,
		VideoGenerationConfig: cfg,
	}, nil
}

// waitForCompletion - 작업이 terminal 상태가 될 때까지 폴링
func (s *Service) waitForCompletion(ctx context.Context, arn, jobID string) (*bedrockruntime.GetAsyncInvokeOutput, error) {
	for {
		status, err := s.api.GetAsyncInvoke(ctx, &bedrockruntime.GetAsyncInvokeInput{
			InvocationArn: aws.String(arn),
		})
		if err != nil {
			// 폴링 중 전송 에러는 즉시 표면화 (무한 silent retry 방지)
			return nil, &model.InvocationError{Op: "poll async invoke", Err: err}
		}

		switch status.Status {
		case types.AsyncInvokeStatusCompleted:
			log.Printf("✅ [Reel] Job %s completed", jobID)
			return status, nil

		case types.AsyncInvokeStatusFailed:
			return nil, &model.JobFailedError{
				JobID:   jobID,
				Message: aws.ToString(status.FailureMessage),
			}

		default:
			log.Printf("⏳ [Reel] Job %s status: %s, waiting %s...", jobID, status.Status, s.PollInterval)
		}

		// ctx 취소/데드라인 체크하면서 대기
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.PollInterval):
		}
	}
}

// retrieveOutput - 완료된 작업의 출력 비디오를 S3에서 조회해 base64로 반환
func (s *Service) retrieveOutput(ctx context.Context, status *bedrockruntime.GetAsyncInvokeOutput, jobID string) (string, error) {
	outputURI := s.outputS3URI
	if cfg, ok := status.OutputDataConfig.(*types.AsyncInvokeOutputDataConfigMemberS3OutputDataConfig); ok {
		if uri := aws.ToString(cfg.Value.S3Uri); uri != "" {
			outputURI = uri
		}
	}

	// 출력 위치 규약: <s3Uri>/output.mp4
	videoURI := strings.TrimSuffix(outputURI, "/") + "/output.mp4"

	bucket, key, err := storage.ParseS3URI(videoURI)
	if err != nil {
		return "", &model.RetrievalError{Bucket: "", Key: videoURI, Err: err}
	}

	data, err := s.store.Fetch(ctx, bucket, key)
	if err != nil {
		return "", err
	}

	log.Printf("🎥 [Reel] Job %s video retrieved: %d bytes", jobID, len(data))
	return base64.StdEncoding.EncodeToString(data), nil
}

// shortJobID - invocation ARN의 마지막 경로 세그먼트 추출 (로깅용, correctness와 무관)
func shortJobID(arn string) string {
	if idx := strings.LastIndex(arn, "/"); idx >= 0 && idx+1 < len(arn) {
		return arn[idx+1:]
	}
	return arn
}
