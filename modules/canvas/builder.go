package canvas

import (
	"strings"

	"nova-canvas-server/modules/common/model"
	"nova-canvas-server/modules/common/utils"
)

// buildEnvelope - 파라미터 종류에 따라 request envelope 생성 (dispatch)
func buildEnvelope(p TaskParams, cfg GenerationConfig, strict bool) (*requestEnvelope, error) {
	switch params := p.(type) {
	case TextToImageParams:
		return buildTextToImage(params, cfg, strict)
	case InpaintingParams:
		return buildInpainting(params, cfg, strict)
	case OutpaintingParams:
		return buildOutpainting(params, cfg, strict)
	case ImageVariationParams:
		return buildImageVariation(params, cfg, strict)
	case ColorGuidedParams:
		return buildColorGuided(params, cfg, strict)
	case BackgroundRemovalParams:
		return buildBackgroundRemoval(params)
	default:
		kind := "<nil>"
		if p != nil {
			kind = string(p.Kind())
		}
		return nil, &model.UnsupportedTaskError{TaskType: kind}
	}
}

// buildTextToImage - TEXT_IMAGE envelope 생성
func buildTextToImage(p TextToImageParams, cfg GenerationConfig, strict bool) (*requestEnvelope, error) {
	if p.Text == "" {
		return nil, &model.ValidationError{Field: "text", Reason: "text prompt is required"}
	}

	wire := &textToImageParams{
		Text:         p.Text,
		NegativeText: p.NegativeText,
	}

	// Conditioning 이미지가 있으면 controlMode/controlStrength 기본값 적용
	if p.ConditionImage != "" {
		normalized, err := utils.NormalizeImage(p.ConditionImage, strict)
		if err != nil {
			return nil, &model.ValidationError{Field: "conditionImage", Reason: err.Error()}
		}
		wire.ConditionImage = normalized
		wire.ControlMode = p.ControlMode
		if wire.ControlMode == "" {
			wire.ControlMode = DefaultControlMode
		}
		wire.ControlStrength = p.ControlStrength
		if wire.ControlStrength == 0 {
			wire.ControlStrength = DefaultControlStrength
		}
	}

	return &requestEnvelope{
		TaskType:              TaskTextImage,
		ImageGenerationConfig: cfg.withDefaults(),
		TextToImageParams:     wire,
	}, nil
}

// buildInpainting - INPAINTING envelope 생성
func buildInpainting(p InpaintingParams, cfg GenerationConfig, strict bool) (*requestEnvelope, error) {
	if p.Image == "" {
		return nil, &model.ValidationError{Field: "image", Reason: "base image is required"}
	}
	if p.Text == "" {
		return nil, &model.ValidationError{Field: "text", Reason: "inpainting prompt is required"}
	}
	if err := validateMask(p.MaskImage, p.MaskPrompt); err != nil {
		return nil, err
	}

	normalized, err := utils.NormalizeImage(p.Image, strict)
	if err != nil {
		return nil, &model.ValidationError{Field: "image", Reason: err.Error()}
	}

	return &requestEnvelope{
		TaskType:              TaskInpainting,
		ImageGenerationConfig: cfg.withDefaults(),
		InPaintingParams: &inPaintingParams{
			Image:        normalized,
			Text:         p.Text,
			NegativeText: p.NegativeText,
			MaskImage:    p.MaskImage,
			MaskPrompt:   p.MaskPrompt,
		},
	}, nil
}

// buildOutpainting - OUTPAINTING envelope 생성
func buildOutpainting(p OutpaintingParams, cfg GenerationConfig, strict bool) (*requestEnvelope, error) {
	if p.Image == "" {
		return nil, &model.ValidationError{Field: "image", Reason: "base image is required"}
	}
	if err := validateMask(p.MaskImage, p.MaskPrompt); err != nil {
		return nil, err
	}

	normalized, err := utils.NormalizeImage(p.Image, strict)
	if err != nil {
		return nil, &model.ValidationError{Field: "image", Reason: err.Error()}
	}

	mode := p.OutPaintingMode
	if mode == "" {
		mode = DefaultOutPaintingMode
	}

	return &requestEnvelope{
		TaskType:              TaskOutpainting,
		ImageGenerationConfig: cfg.withDefaults(),
		OutPaintingParams: &outPaintingParams{
			Image:           normalized,
			Text:            p.Text,
			MaskImage:       p.MaskImage,
			MaskPrompt:      p.MaskPrompt,
			OutPaintingMode: mode,
		},
	}, nil
}

// buildImageVariation - IMAGE_VARIATION envelope 생성
func buildImageVariation(p ImageVariationParams, cfg GenerationConfig, strict bool) (*requestEnvelope, error) {
	if len(p.Images) == 0 {
		return nil, &model.ValidationError{Field: "images", Reason: "at least one reference image is required"}
	}

	normalized := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		n, err := utils.NormalizeImage(img, strict)
		if err != nil {
			return nil, &model.ValidationError{Field: "images", Reason: err.Error()}
		}
		normalized = append(normalized, n)
	}

	return &requestEnvelope{
		TaskType:              TaskImageVariation,
		ImageGenerationConfig: cfg.withDefaults(),
		ImageVariationParams: &imageVariationParams{
			Images: normalized,
			Text:   p.Text,
		},
	}, nil
}

// buildColorGuided - COLOR_GUIDED_GENERATION envelope 생성
func buildColorGuided(p ColorGuidedParams, cfg GenerationConfig, strict bool) (*requestEnvelope, error) {
	if p.Text == "" {
		return nil, &model.ValidationError{Field: "text", Reason: "text prompt is required"}
	}

	colors := splitColors(p.Colors)
	if len(colors) == 0 {
		return nil, &model.ValidationError{Field: "colors", Reason: "at least one hex color is required"}
	}

	wire := &colorGuidedGenerationParams{
		Text:   p.Text,
		Colors: colors,
	}

	if p.ReferenceImage != "" {
		normalized, err := utils.NormalizeImage(p.ReferenceImage, strict)
		if err != nil {
			return nil, &model.ValidationError{Field: "referenceImage", Reason: err.Error()}
		}
		wire.ReferenceImage = normalized
	}

	return &requestEnvelope{
		TaskType:                    TaskColorGuidedGeneration,
		ImageGenerationConfig:       cfg.withDefaults(),
		ColorGuidedGenerationParams: wire,
	}, nil
}

// buildBackgroundRemoval - BACKGROUND_REMOVAL envelope 생성.
// imageGenerationConfig is omitted entirely, and the input deliberately skips
// the normalizer: transparency is valid input here.
func buildBackgroundRemoval(p BackgroundRemovalParams) (*requestEnvelope, error) {
	if p.Image == "" {
		return nil, &model.ValidationError{Field: "image", Reason: "base image is required"}
	}

	return &requestEnvelope{
		TaskType:                TaskBackgroundRemoval,
		BackgroundRemovalParams: &backgroundRemovalParams{Image: p.Image},
	}, nil
}

// validateMask - maskImage와 maskPrompt 중 정확히 하나만 허용
func validateMask(maskImage, maskPrompt string) error {
	if maskImage != "" && maskPrompt != "" {
		return &model.ValidationError{Field: "maskImage", Reason: "maskImage and maskPrompt are mutually exclusive"}
	}
	if maskImage == "" && maskPrompt == "" {
		return &model.ValidationError{Field: "maskImage", Reason: "either maskImage or maskPrompt is required"}
	}
	return nil
}

// splitColors - 콤마로 연결된 hex 색상 문자열을 리스트로 분리
func splitColors(colors string) []string {
	parts := strings.Split(colors, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
