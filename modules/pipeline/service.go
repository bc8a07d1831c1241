package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"nova-canvas-server/modules/canvas"
	"nova-canvas-server/modules/common/model"
	"nova-canvas-server/modules/reel"
)

const (
	runKeyPrefix = "pipeline:run:"
	runTTL       = 24 * time.Hour
)

// ErrRunNotFound - 존재하지 않거나 만료된 Run 조회
var ErrRunNotFound = errors.New("pipeline run not found")

// ImageGenerator - canvas.Service가 구현
type ImageGenerator interface {
	Generate(ctx context.Context, p canvas.TaskParams, cfg canvas.GenerationConfig) ([]string, error)
}

// VideoEnqueuer - reel.Queue가 구현
type VideoEnqueuer interface {
	Enqueue(ctx context.Context, p reel.VideoParams) (string, error)
}

// Service - 제품 시각화 파이프라인.
// 제품 이미지 생성 → 배경 제거 → 마케팅 배경 합성 → 비디오 릴 제출의
// 4단계를 명시적 상태 머신으로 진행한다.
type Service struct {
	images ImageGenerator
	videos VideoEnqueuer
	rdb    *redis.Client

	// 단계별 시드 생성 (테스트에서 교체)
	seedFn func() int64
}

// NewService - Service 생성
func NewService(images ImageGenerator, videos VideoEnqueuer, rdb *redis.Client) *Service {
	return &Service{
		images: images,
		videos: videos,
		rdb:    rdb,
		seedFn: func() int64 { return rand.Int63n(MaxSeed + 1) },
	}
}

// Start - 파이프라인 시작: 제품 이미지를 생성하고 새 Run을 저장
func (s *Service) Start(ctx context.Context, productPrompt string) (*Run, error) {
	if productPrompt == "" {
		return nil, &model.ValidationError{Field: "productPrompt", Reason: "product description is required"}
	}

	images, err := s.images.Generate(ctx,
		canvas.TextToImageParams{Text: productPrompt},
		canvas.GenerationConfig{
			Width:  FrameWidth,
			Height: FrameHeight,
			Seed:   s.seedFn(),
		})
	if err != nil {
		return nil, err
	}

	now := time.Now().Format(time.RFC3339)
	run := &Run{
		RunID:         uuid.New().String(),
		Step:          StepBackgroundRemoval,
		ProductPrompt: productPrompt,
		ProductImage:  images[0],
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.save(ctx, run); err != nil {
		return nil, err
	}

	log.Printf("🎯 [Pipeline] Run %s started: product image generated", run.RunID)
	return run, nil
}

// Advance - 현재 단계에 따라 다음 작업 실행 후 상태 전이
func (s *Service) Advance(ctx context.Context, runID string, input AdvanceInput) (*Run, error) {
	run, err := s.Get(ctx, runID)
	if err != nil {
		return nil, err
	}

	switch run.Step {
	case StepBackgroundRemoval:
		err = s.removeBackground(ctx, run)
	case StepScene:
		err = s.composeScene(ctx, run, input.BackgroundPrompt)
	case StepReel:
		err = s.submitReel(ctx, run, input.VideoPrompt)
	case StepDone:
		return nil, &model.ValidationError{Field: "runId", Reason: "pipeline already finished"}
	default:
		return nil, &model.ValidationError{Field: "runId", Reason: "unknown pipeline step: " + run.Step}
	}
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// removeBackground - 제품 이미지에서 배경 제거
func (s *Service) removeBackground(ctx context.Context, run *Run) error {
	images, err := s.images.Generate(ctx,
		canvas.BackgroundRemovalParams{Image: run.ProductImage},
		canvas.GenerationConfig{})
	if err != nil {
		return err
	}

	run.CutoutImage = images[0]
	run.Step = StepScene
	log.Printf("🎯 [Pipeline] Run %s: background removed", run.RunID)
	return nil
}

// composeScene - 제품만 마스킹한 채 마케팅 배경을 outpainting으로 합성.
// 제품 설명을 maskPrompt로 써서 제품 영역을 보존하고, PRECISE 모드로
// 마스크 경계를 타이트하게 유지한다.
func (s *Service) composeScene(ctx context.Context, run *Run, backgroundPrompt string) error {
	if backgroundPrompt == "" {
		return &model.ValidationError{Field: "backgroundPrompt", Reason: "background description is required"}
	}

	images, err := s.images.Generate(ctx,
		canvas.OutpaintingParams{
			Image:           run.CutoutImage,
			Text:            fmt.Sprintf("A %s on a %s", run.ProductPrompt, backgroundPrompt),
			MaskPrompt:      run.ProductPrompt,
			OutPaintingMode: "PRECISE",
		},
		canvas.GenerationConfig{Seed: s.seedFn()})
	if err != nil {
		return err
	}

	run.SceneImage = images[0]
	run.Step = StepReel
	log.Printf("🎯 [Pipeline] Run %s: marketing scene composed", run.RunID)
	return nil
}

// submitReel - 합성된 장면을 시드 프레임으로 비디오 작업 제출
func (s *Service) submitReel(ctx context.Context, run *Run, videoPrompt string) error {
	if videoPrompt == "" {
		return &model.ValidationError{Field: "videoPrompt", Reason: "video prompt is required"}
	}

	jobID, err := s.videos.Enqueue(ctx, reel.VideoParams{
		Text:  videoPrompt,
		Image: run.SceneImage,
		Seed:  s.seedFn(),
	})
	if err != nil {
		return err
	}

	run.ReelJobID = jobID
	run.Step = StepDone
	log.Printf("🎯 [Pipeline] Run %s: reel job %s submitted, pipeline done", run.RunID, jobID)
	return nil
}

// Get - Run 레코드 조회
func (s *Service) Get(ctx context.Context, runID string) (*Run, error) {
	data, err := s.rdb.Get(ctx, runKeyPrefix+runID).Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse run record: %w", err)
	}
	return &run, nil
}

// save - Run 레코드 저장 (TTL 포함)
func (s *Service) save(ctx context.Context, run *Run) error {
	run.UpdatedAt = time.Now().Format(time.RFC3339)

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	if err := s.rdb.Set(ctx, runKeyPrefix+run.RunID, data, runTTL).Err(); err != nil {
		return fmt.Errorf("failed to store run record: %w", err)
	}
	return nil
}
