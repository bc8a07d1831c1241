package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-canvas-server/modules/canvas"
	"nova-canvas-server/modules/common/model"
	"nova-canvas-server/modules/reel"
)

// generatorSpy - 각 호출의 파라미터를 기록하고 미리 정해진 이미지를 반환
type generatorSpy struct {
	params  []canvas.TaskParams
	configs []canvas.GenerationConfig
	results []string
	err     error
}

func (g *generatorSpy) Generate(ctx context.Context, p canvas.TaskParams, cfg canvas.GenerationConfig) ([]string, error) {
	g.params = append(g.params, p)
	g.configs = append(g.configs, cfg)
	if g.err != nil {
		return nil, g.err
	}
	return []string{g.results[len(g.params)-1]}, nil
}

// enqueuerSpy - 제출된 비디오 파라미터 기록
type enqueuerSpy struct {
	calls  int
	last   reel.VideoParams
	jobID  string
	err    error
}

func (e *enqueuerSpy) Enqueue(ctx context.Context, p reel.VideoParams) (string, error) {
	e.calls++
	e.last = p
	if e.err != nil {
		return "", e.err
	}
	return e.jobID, nil
}

func setupService(t *testing.T, gen *generatorSpy, enq *enqueuerSpy) *Service {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	svc := NewService(gen, enq, rdb)
	svc.seedFn = func() int64 { return 42 } // 테스트용 고정 시드
	return svc
}

func TestPipelineFullRun(t *testing.T) {
	gen := &generatorSpy{results: []string{"product-b64", "cutout-b64", "scene-b64"}}
	enq := &enqueuerSpy{jobID: "job-99"}
	svc := setupService(t, gen, enq)
	ctx := context.Background()

	// 1단계: 제품 이미지
	run, err := svc.Start(ctx, "sleek chrome toaster")
	require.NoError(t, err)
	assert.Equal(t, StepBackgroundRemoval, run.Step)
	assert.Equal(t, "product-b64", run.ProductImage)

	textParams, ok := gen.params[0].(canvas.TextToImageParams)
	require.True(t, ok)
	assert.Equal(t, "sleek chrome toaster", textParams.Text)
	assert.Equal(t, FrameWidth, gen.configs[0].Width)
	assert.Equal(t, FrameHeight, gen.configs[0].Height)
	assert.Equal(t, int64(42), gen.configs[0].Seed)

	// 2단계: 배경 제거 (입력 불필요)
	run, err = svc.Advance(ctx, run.RunID, AdvanceInput{})
	require.NoError(t, err)
	assert.Equal(t, StepScene, run.Step)
	assert.Equal(t, "cutout-b64", run.CutoutImage)

	removalParams, ok := gen.params[1].(canvas.BackgroundRemovalParams)
	require.True(t, ok)
	assert.Equal(t, "product-b64", removalParams.Image)

	// 3단계: 마케팅 배경 합성
	run, err = svc.Advance(ctx, run.RunID, AdvanceInput{BackgroundPrompt: "modern kitchen counter"})
	require.NoError(t, err)
	assert.Equal(t, StepReel, run.Step)
	assert.Equal(t, "scene-b64", run.SceneImage)

	outParams, ok := gen.params[2].(canvas.OutpaintingParams)
	require.True(t, ok)
	assert.Equal(t, "cutout-b64", outParams.Image)
	assert.Equal(t, "A sleek chrome toaster on a modern kitchen counter", outParams.Text)
	assert.Equal(t, "sleek chrome toaster", outParams.MaskPrompt, "product prompt masks the product region")
	assert.Equal(t, "PRECISE", outParams.OutPaintingMode)

	// 4단계: 비디오 릴 제출
	run, err = svc.Advance(ctx, run.RunID, AdvanceInput{VideoPrompt: "Dolly forward"})
	require.NoError(t, err)
	assert.Equal(t, StepDone, run.Step)
	assert.Equal(t, "job-99", run.ReelJobID)

	assert.Equal(t, 1, enq.calls)
	assert.Equal(t, "Dolly forward", enq.last.Text)
	assert.Equal(t, "scene-b64", enq.last.Image, "composed scene is the video seed frame")
	assert.Equal(t, int64(42), enq.last.Seed)
}

func TestPipelineStartRequiresProductPrompt(t *testing.T) {
	gen := &generatorSpy{}
	svc := setupService(t, gen, &enqueuerSpy{})

	_, err := svc.Start(context.Background(), "")

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, gen.params, "no generation before validation passes")
}

func TestPipelineSceneRequiresBackgroundPrompt(t *testing.T) {
	gen := &generatorSpy{results: []string{"product-b64", "cutout-b64"}}
	svc := setupService(t, gen, &enqueuerSpy{})
	ctx := context.Background()

	run, err := svc.Start(ctx, "toaster")
	require.NoError(t, err)
	run, err = svc.Advance(ctx, run.RunID, AdvanceInput{})
	require.NoError(t, err)

	_, err = svc.Advance(ctx, run.RunID, AdvanceInput{})

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)

	// 실패한 단계는 전이되지 않아야 함
	persisted, err := svc.Get(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, StepScene, persisted.Step)
}

func TestPipelineAdvanceAfterDone(t *testing.T) {
	gen := &generatorSpy{results: []string{"a", "b", "c"}}
	enq := &enqueuerSpy{jobID: "job-1"}
	svc := setupService(t, gen, enq)
	ctx := context.Background()

	run, err := svc.Start(ctx, "toaster")
	require.NoError(t, err)
	run, err = svc.Advance(ctx, run.RunID, AdvanceInput{})
	require.NoError(t, err)
	run, err = svc.Advance(ctx, run.RunID, AdvanceInput{BackgroundPrompt: "kitchen"})
	require.NoError(t, err)
	run, err = svc.Advance(ctx, run.RunID, AdvanceInput{VideoPrompt: "Dolly forward"})
	require.NoError(t, err)

	_, err = svc.Advance(ctx, run.RunID, AdvanceInput{VideoPrompt: "again"})

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 1, enq.calls, "finished pipeline must not resubmit")
}

func TestPipelineUnknownRun(t *testing.T) {
	svc := setupService(t, &generatorSpy{}, &enqueuerSpy{})

	_, err := svc.Advance(context.Background(), "missing-run", AdvanceInput{})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestPipelineGenerationFailurePreservesStep(t *testing.T) {
	gen := &generatorSpy{results: []string{"product-b64"}}
	svc := setupService(t, gen, &enqueuerSpy{})
	ctx := context.Background()

	run, err := svc.Start(ctx, "toaster")
	require.NoError(t, err)

	gen.err = errors.New("model overloaded")
	_, err = svc.Advance(ctx, run.RunID, AdvanceInput{})
	require.Error(t, err)

	persisted, getErr := svc.Get(ctx, run.RunID)
	require.NoError(t, getErr)
	assert.Equal(t, StepBackgroundRemoval, persisted.Step, "failed step stays retryable")
	assert.Empty(t, persisted.CutoutImage)
}
