package reel

// Nova Reel 기본값 (비디오는 1280x720 고정 해상도)
const (
	DefaultDurationSeconds = 6
	DefaultFPS             = 24
	DefaultDimension       = "1280x720"
)

// VideoParams - TEXT_VIDEO 생성 파라미터
type VideoParams struct {
	Text            string `json:"text"`
	Image           string `json:"image,omitempty"` // seed frame (base64)
	Seed            int64  `json:"seed,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	FPS             int    `json:"fps,omitempty"`
	Dimension       string `json:"dimension,omitempty"`
}

// Job - Redis 큐에 저장되는 비디오 생성 작업 레코드
type Job struct {
	JobID        string      `json:"jobId"`
	Params       VideoParams `json:"params"`
	Status       string      `json:"status"`
	VideoBase64  string      `json:"videoBase64,omitempty"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
	CreatedAt    string      `json:"createdAt"`
	UpdatedAt    string      `json:"updatedAt"`
}

// ------- wire model input (Bedrock Nova Reel JSON schema) -------

type videoImageSource struct {
	Bytes string `json:"bytes"`
}

type videoImage struct {
	Format string           `json:"format"`
	Source videoImageSource `json:"source"`
}

type textToVideoParams struct {
	Text   string       `json:"text"`
	Images []videoImage `json:"images,omitempty"`
}

type videoGenerationConfig struct {
	DurationSeconds int    `json:"durationSeconds"`
	FPS             int    `json:"fps"`
	Dimension       string `json:"dimension"`
	Seed            int64  `json:"seed"`
}

type reelModelInput struct {
	TaskType              string                `json:"taskType"`
	TextToVideoParams     textToVideoParams     `json:"textToVideoParams"`
	VideoGenerationConfig videoGenerationConfig `json:"videoGenerationConfig"`
}
