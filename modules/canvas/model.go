package canvas

// TaskKind - Nova Canvas/Reel 작업 종류 (closed enum)
type TaskKind string

const (
	TaskTextImage             TaskKind = "TEXT_IMAGE"
	TaskInpainting            TaskKind = "INPAINTING"
	TaskOutpainting           TaskKind = "OUTPAINTING"
	TaskImageVariation        TaskKind = "IMAGE_VARIATION"
	TaskColorGuidedGeneration TaskKind = "COLOR_GUIDED_GENERATION"
	TaskBackgroundRemoval     TaskKind = "BACKGROUND_REMOVAL"
	TaskTextVideo             TaskKind = "TEXT_VIDEO"
)

// 공용 기본값
const (
	DefaultWidth           = 1024
	DefaultHeight          = 1024
	DefaultNumberOfImages  = 1
	DefaultQuality         = "standard"
	DefaultCfgScale        = 6.5
	DefaultControlMode     = "CANNY_EDGE"
	DefaultControlStrength = 0.7
	DefaultOutPaintingMode = "DEFAULT"
)

// GenerationConfig - 모든 이미지 작업이 공유하는 imageGenerationConfig 블록.
// Zero values are replaced with the shared defaults when the envelope is built.
type GenerationConfig struct {
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	NumberOfImages int     `json:"numberOfImages,omitempty"`
	Quality        string  `json:"quality,omitempty"`
	CfgScale       float64 `json:"cfgScale,omitempty"`
	Seed           int64   `json:"seed,omitempty"`
}

// withDefaults - 생략된 필드를 기본값으로 채운 wire 블록 생성
func (c GenerationConfig) withDefaults() *imageGenerationConfig {
	out := &imageGenerationConfig{
		Width:          c.Width,
		Height:         c.Height,
		NumberOfImages: c.NumberOfImages,
		Quality:        c.Quality,
		CfgScale:       c.CfgScale,
		Seed:           c.Seed,
	}
	if out.Width == 0 {
		out.Width = DefaultWidth
	}
	if out.Height == 0 {
		out.Height = DefaultHeight
	}
	if out.NumberOfImages == 0 {
		out.NumberOfImages = DefaultNumberOfImages
	}
	if out.Quality == "" {
		out.Quality = DefaultQuality
	}
	if out.CfgScale == 0 {
		out.CfgScale = DefaultCfgScale
	}
	return out
}

// TaskParams - 작업별 파라미터의 tagged union.
// Each concrete params struct carries exactly the fields its task accepts, so
// an impossible combination cannot be expressed outside of the mask pair,
// which the builders still reject defensively.
type TaskParams interface {
	Kind() TaskKind
}

// TextToImageParams - TEXT_IMAGE 파라미터
type TextToImageParams struct {
	Text            string  `json:"text"`
	NegativeText    string  `json:"negativeText,omitempty"`
	ConditionImage  string  `json:"conditionImage,omitempty"`
	ControlMode     string  `json:"controlMode,omitempty"`
	ControlStrength float64 `json:"controlStrength,omitempty"`
}

func (TextToImageParams) Kind() TaskKind { return TaskTextImage }

// InpaintingParams - INPAINTING 파라미터 (maskImage ⊕ maskPrompt)
type InpaintingParams struct {
	Image        string `json:"image"`
	Text         string `json:"text"`
	NegativeText string `json:"negativeText,omitempty"`
	MaskImage    string `json:"maskImage,omitempty"`
	MaskPrompt   string `json:"maskPrompt,omitempty"`
}

func (InpaintingParams) Kind() TaskKind { return TaskInpainting }

// OutpaintingParams - OUTPAINTING 파라미터 (maskImage ⊕ maskPrompt)
type OutpaintingParams struct {
	Image           string `json:"image"`
	Text            string `json:"text,omitempty"`
	MaskImage       string `json:"maskImage,omitempty"`
	MaskPrompt      string `json:"maskPrompt,omitempty"`
	OutPaintingMode string `json:"outPaintingMode,omitempty"`
}

func (OutpaintingParams) Kind() TaskKind { return TaskOutpainting }

// ImageVariationParams - IMAGE_VARIATION 파라미터
type ImageVariationParams struct {
	Images []string `json:"images"`
	Text   string   `json:"text,omitempty"`
}

func (ImageVariationParams) Kind() TaskKind { return TaskImageVariation }

// ColorGuidedParams - COLOR_GUIDED_GENERATION 파라미터.
// Colors comes in comma-joined ("#FF0000,#00FF00") and is split by the builder.
type ColorGuidedParams struct {
	Text           string `json:"text"`
	Colors         string `json:"colors"`
	ReferenceImage string `json:"referenceImage,omitempty"`
}

func (ColorGuidedParams) Kind() TaskKind { return TaskColorGuidedGeneration }

// BackgroundRemovalParams - BACKGROUND_REMOVAL 파라미터
type BackgroundRemovalParams struct {
	Image string `json:"image"`
}

func (BackgroundRemovalParams) Kind() TaskKind { return TaskBackgroundRemoval }

// ------- wire envelope (Bedrock Nova Canvas JSON schema) -------

type imageGenerationConfig struct {
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	NumberOfImages int     `json:"numberOfImages"`
	Quality        string  `json:"quality"`
	CfgScale       float64 `json:"cfgScale"`
	Seed           int64   `json:"seed"`
}

type textToImageParams struct {
	Text            string  `json:"text"`
	NegativeText    string  `json:"negativeText,omitempty"`
	ConditionImage  string  `json:"conditionImage,omitempty"`
	ControlMode     string  `json:"controlMode,omitempty"`
	ControlStrength float64 `json:"controlStrength,omitempty"`
}

type inPaintingParams struct {
	Image        string `json:"image"`
	Text         string `json:"text"`
	NegativeText string `json:"negativeText,omitempty"`
	MaskImage    string `json:"maskImage,omitempty"`
	MaskPrompt   string `json:"maskPrompt,omitempty"`
}

type outPaintingParams struct {
	Image           string `json:"image"`
	Text            string `json:"text,omitempty"`
	MaskImage       string `json:"maskImage,omitempty"`
	MaskPrompt      string `json:"maskPrompt,omitempty"`
	OutPaintingMode string `json:"outPaintingMode"`
}

type imageVariationParams struct {
	Images []string `json:"images"`
	Text   string   `json:"text,omitempty"`
}

type colorGuidedGenerationParams struct {
	Text           string   `json:"text"`
	Colors         []string `json:"colors"`
	ReferenceImage string   `json:"referenceImage,omitempty"`
}

type backgroundRemovalParams struct {
	Image string `json:"image"`
}

type requestEnvelope struct {
	TaskType                    TaskKind                     `json:"taskType"`
	ImageGenerationConfig       *imageGenerationConfig       `json:"imageGenerationConfig,omitempty"`
	TextToImageParams           *textToImageParams           `json:"textToImageParams,omitempty"`
	InPaintingParams            *inPaintingParams            `json:"inPaintingParams,omitempty"`
	OutPaintingParams           *outPaintingParams           `json:"outPaintingParams,omitempty"`
	ImageVariationParams        *imageVariationParams        `json:"imageVariationParams,omitempty"`
	ColorGuidedGenerationParams *colorGuidedGenerationParams `json:"colorGuidedGenerationParams,omitempty"`
	BackgroundRemovalParams     *backgroundRemovalParams     `json:"backgroundRemovalParams,omitempty"`
}

// invokeResponse - InvokeModel 응답 body
type invokeResponse struct {
	Images []string `json:"images"`
	Error  string   `json:"error,omitempty"`
}
