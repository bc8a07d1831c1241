package pipeline

// 파이프라인 단계 (explicit state machine)
const (
	StepProduct           = "awaiting_product"
	StepBackgroundRemoval = "awaiting_background_removal"
	StepScene             = "awaiting_scene"
	StepReel              = "awaiting_reel"
	StepDone              = "done"
)

// 파이프라인 이미지 해상도 - 비디오 시드 프레임과 동일한 16:9
const (
	FrameWidth  = 1280
	FrameHeight = 720
)

// MaxSeed - 각 생성 단계마다 새로 뽑는 시드의 상한 (inclusive)
const MaxSeed = 858993459

// Run - 진행 중인 파이프라인 실행 레코드
type Run struct {
	RunID         string `json:"runId"`
	Step          string `json:"step"`
	ProductPrompt string `json:"productPrompt"`

	// 단계별 산출물 (base64 PNG)
	ProductImage string `json:"productImage,omitempty"`
	CutoutImage  string `json:"cutoutImage,omitempty"`
	SceneImage   string `json:"sceneImage,omitempty"`

	// 마지막 단계에서 제출된 비디오 작업
	ReelJobID string `json:"reelJobId,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// AdvanceInput - 다음 단계 실행에 필요한 사용자 입력.
// Which field is required depends on the run's current step; the background
// removal step takes no input at all.
type AdvanceInput struct {
	BackgroundPrompt string `json:"backgroundPrompt,omitempty"`
	VideoPrompt      string `json:"videoPrompt,omitempty"`
}
