package canvas

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-canvas-server/modules/common/model"
)

// b64 - 테스트용 base64 페이로드 (이미지가 아니므로 lenient normalizer는 그대로 통과)
func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// toMap - envelope을 map으로 변환해 키 존재 여부 검증
func toMap(t *testing.T, env *requestEnvelope) map[string]interface{} {
	t.Helper()
	data, err := json.Marshal(env)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestTextToImageDefaults(t *testing.T) {
	env, err := buildEnvelope(TextToImageParams{Text: "a red cube"}, GenerationConfig{}, false)
	require.NoError(t, err)

	m := toMap(t, env)
	assert.Equal(t, "TEXT_IMAGE", m["taskType"])

	cfg := m["imageGenerationConfig"].(map[string]interface{})
	assert.Equal(t, float64(1024), cfg["width"])
	assert.Equal(t, float64(1024), cfg["height"])
	assert.Equal(t, float64(1), cfg["numberOfImages"])
	assert.Equal(t, "standard", cfg["quality"])
	assert.Equal(t, 6.5, cfg["cfgScale"])
	assert.Equal(t, float64(0), cfg["seed"])

	params := m["textToImageParams"].(map[string]interface{})
	assert.Equal(t, "a red cube", params["text"])
	assert.NotContains(t, params, "negativeText")
	assert.NotContains(t, params, "conditionImage")
}

func TestTextToImageConditionImageDefaults(t *testing.T) {
	env, err := buildEnvelope(TextToImageParams{
		Text:           "a red cube",
		ConditionImage: b64("edge-map"),
	}, GenerationConfig{}, false)
	require.NoError(t, err)

	params := toMap(t, env)["textToImageParams"].(map[string]interface{})
	assert.Equal(t, b64("edge-map"), params["conditionImage"])
	assert.Equal(t, "CANNY_EDGE", params["controlMode"])
	assert.Equal(t, 0.7, params["controlStrength"])
}

func TestTextToImageRequiresText(t *testing.T) {
	_, err := buildEnvelope(TextToImageParams{}, GenerationConfig{}, false)

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "text", validationErr.Field)
}

func TestInpaintingMaskExclusivity(t *testing.T) {
	base := InpaintingParams{Image: b64("img"), Text: "replace the sky"}

	// 둘 다 없음
	_, err := buildEnvelope(base, GenerationConfig{}, false)
	var validationErr *model.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	// 둘 다 있음
	both := base
	both.MaskImage = b64("mask")
	both.MaskPrompt = "the sky"
	_, err = buildEnvelope(both, GenerationConfig{}, false)
	assert.ErrorAs(t, err, &validationErr)

	// maskImage만
	imgOnly := base
	imgOnly.MaskImage = b64("mask")
	env, err := buildEnvelope(imgOnly, GenerationConfig{}, false)
	require.NoError(t, err)
	params := toMap(t, env)["inPaintingParams"].(map[string]interface{})
	assert.Contains(t, params, "maskImage")
	assert.NotContains(t, params, "maskPrompt")

	// maskPrompt만
	promptOnly := base
	promptOnly.MaskPrompt = "the sky"
	env, err = buildEnvelope(promptOnly, GenerationConfig{}, false)
	require.NoError(t, err)
	params = toMap(t, env)["inPaintingParams"].(map[string]interface{})
	assert.Contains(t, params, "maskPrompt")
	assert.NotContains(t, params, "maskImage")
}

func TestInpaintingRequiredFields(t *testing.T) {
	var validationErr *model.ValidationError

	_, err := buildEnvelope(InpaintingParams{Text: "x", MaskPrompt: "y"}, GenerationConfig{}, false)
	assert.ErrorAs(t, err, &validationErr)

	_, err = buildEnvelope(InpaintingParams{Image: b64("img"), MaskPrompt: "y"}, GenerationConfig{}, false)
	assert.ErrorAs(t, err, &validationErr)
}

func TestOutpaintingMaskExclusivityAndModeDefault(t *testing.T) {
	var validationErr *model.ValidationError

	_, err := buildEnvelope(OutpaintingParams{Image: b64("img")}, GenerationConfig{}, false)
	assert.ErrorAs(t, err, &validationErr)

	_, err = buildEnvelope(OutpaintingParams{
		Image:      b64("img"),
		MaskImage:  b64("mask"),
		MaskPrompt: "the product",
	}, GenerationConfig{}, false)
	assert.ErrorAs(t, err, &validationErr)

	env, err := buildEnvelope(OutpaintingParams{
		Image:      b64("img"),
		MaskPrompt: "the product",
	}, GenerationConfig{}, false)
	require.NoError(t, err)
	params := toMap(t, env)["outPaintingParams"].(map[string]interface{})
	assert.Equal(t, "DEFAULT", params["outPaintingMode"])
	assert.NotContains(t, params, "text", "optional text must be absent when empty")
}

func TestOutpaintingKeepsExplicitMode(t *testing.T) {
	env, err := buildEnvelope(OutpaintingParams{
		Image:           b64("img"),
		MaskPrompt:      "the product",
		OutPaintingMode: "PRECISE",
	}, GenerationConfig{}, false)
	require.NoError(t, err)

	params := toMap(t, env)["outPaintingParams"].(map[string]interface{})
	assert.Equal(t, "PRECISE", params["outPaintingMode"])
}

func TestImageVariationRequiresImages(t *testing.T) {
	var validationErr *model.ValidationError
	_, err := buildEnvelope(ImageVariationParams{Text: "variant"}, GenerationConfig{}, false)
	assert.ErrorAs(t, err, &validationErr)

	env, err := buildEnvelope(ImageVariationParams{
		Images: []string{b64("one"), b64("two")},
	}, GenerationConfig{}, false)
	require.NoError(t, err)

	params := toMap(t, env)["imageVariationParams"].(map[string]interface{})
	assert.Len(t, params["images"], 2)
}

func TestColorGuidedSplitsColors(t *testing.T) {
	env, err := buildEnvelope(ColorGuidedParams{
		Text:   "a living room",
		Colors: "#FF0000,#00FF00",
	}, GenerationConfig{}, false)
	require.NoError(t, err)

	params := toMap(t, env)["colorGuidedGenerationParams"].(map[string]interface{})
	assert.Equal(t, []interface{}{"#FF0000", "#00FF00"}, params["colors"])
	assert.NotContains(t, params, "referenceImage")
}

func TestColorGuidedRequiresColors(t *testing.T) {
	var validationErr *model.ValidationError
	_, err := buildEnvelope(ColorGuidedParams{Text: "a living room"}, GenerationConfig{}, false)
	assert.ErrorAs(t, err, &validationErr)

	// 콤마와 공백만 있는 경우도 거부
	_, err = buildEnvelope(ColorGuidedParams{Text: "a living room", Colors: " , "}, GenerationConfig{}, false)
	assert.ErrorAs(t, err, &validationErr)
}

func TestBackgroundRemovalOmitsGenerationConfig(t *testing.T) {
	env, err := buildEnvelope(BackgroundRemovalParams{Image: b64("img")}, GenerationConfig{}, false)
	require.NoError(t, err)

	m := toMap(t, env)
	assert.Equal(t, "BACKGROUND_REMOVAL", m["taskType"])
	assert.NotContains(t, m, "imageGenerationConfig")
	assert.Contains(t, m, "backgroundRemovalParams")
}

func TestExplicitConfigOverridesDefaults(t *testing.T) {
	env, err := buildEnvelope(TextToImageParams{Text: "a red cube"}, GenerationConfig{
		Width:          1280,
		Height:         720,
		NumberOfImages: 3,
		Quality:        "premium",
		CfgScale:       8.0,
		Seed:           42,
	}, false)
	require.NoError(t, err)

	cfg := toMap(t, env)["imageGenerationConfig"].(map[string]interface{})
	assert.Equal(t, float64(1280), cfg["width"])
	assert.Equal(t, float64(720), cfg["height"])
	assert.Equal(t, float64(3), cfg["numberOfImages"])
	assert.Equal(t, "premium", cfg["quality"])
	assert.Equal(t, 8.0, cfg["cfgScale"])
	assert.Equal(t, float64(42), cfg["seed"])
}
