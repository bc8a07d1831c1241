package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"nova-canvas-server/modules/common/bedrock"
	"nova-canvas-server/modules/common/model"
)

// Service - Nova Canvas 이미지 생성 서비스 (task router + synchronous invoker)
type Service struct {
	api             bedrock.Invoker
	modelID         string
	strictNormalize bool
}

// NewService - Service 생성
func NewService(api bedrock.Invoker, modelID string, strictNormalize bool) *Service {
	return &Service{
		api:             api,
		modelID:         modelID,
		strictNormalize: strictNormalize,
	}
}

// Generate - 작업 파라미터를 envelope으로 변환해 모델 호출 후 이미지 리스트 반환.
// Every request builds its own envelope; nothing is shared between calls, so
// concurrent use is safe as long as the underlying Bedrock client is.
func (s *Service) Generate(ctx context.Context, p TaskParams, cfg GenerationConfig) ([]string, error) {
	env, err := buildEnvelope(p, cfg, s.strictNormalize)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, &model.InvocationError{Op: "marshal request", Err: err}
	}

	log.Printf("🎨 [Canvas] Invoking %s (task: %s)", s.modelID, env.TaskType)

	out, err := s.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(s.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, &model.InvocationError{Op: "invoke model", Err: err}
	}

	// 응답 파싱
	var resp invokeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, &model.InvocationError{Op: "decode response", Err: err}
	}

	if len(resp.Images) == 0 {
		reason := resp.Error
		if reason == "" {
			reason = "response contained no images"
		}
		return nil, &model.InvocationError{Op: "decode response", Err: fmt.Errorf("%s", reason)}
	}

	log.Printf("✅ [Canvas] Task %s returned %d image(s)", env.TaskType, len(resp.Images))
	return resp.Images, nil
}
