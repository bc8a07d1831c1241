package canvas

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"nova-canvas-server/modules/common/model"
)

// Handler - Canvas HTTP 핸들러
type Handler struct {
	service *Service
}

// GenerateRequest - POST /api/canvas/generate 요청 body.
// Params is decoded into the task-specific struct selected by TaskType.
type GenerateRequest struct {
	TaskType TaskKind         `json:"taskType"`
	Config   GenerationConfig `json:"config"`
	Params   json.RawMessage  `json:"params"`
}

// GenerateResponse - 생성된 이미지 목록 (base64)
type GenerateResponse struct {
	Images []string `json:"images"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler - Handler 생성
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/canvas/generate", h.HandleGenerate).Methods("POST", "OPTIONS")
	log.Println("✅ Canvas routes registered: /api/canvas/generate")
}

// HandleGenerate - POST /api/canvas/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// taskType에 따라 params 디코딩 (bag → tagged union 경계)
	params, err := decodeParams(req.TaskType, req.Params)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	images, err := h.service.Generate(r.Context(), params, req.Config)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	json.NewEncoder(w).Encode(GenerateResponse{Images: images})
}

// decodeParams - params JSON을 작업별 구조체로 디코딩
func decodeParams(kind TaskKind, raw json.RawMessage) (TaskParams, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	var p TaskParams
	var err error

	switch kind {
	case TaskTextImage:
		var v TextToImageParams
		err = json.Unmarshal(raw, &v)
		p = v
	case TaskInpainting:
		var v InpaintingParams
		err = json.Unmarshal(raw, &v)
		p = v
	case TaskOutpainting:
		var v OutpaintingParams
		err = json.Unmarshal(raw, &v)
		p = v
	case TaskImageVariation:
		var v ImageVariationParams
		err = json.Unmarshal(raw, &v)
		p = v
	case TaskColorGuidedGeneration:
		var v ColorGuidedParams
		err = json.Unmarshal(raw, &v)
		p = v
	case TaskBackgroundRemoval:
		var v BackgroundRemovalParams
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		// TEXT_VIDEO는 /api/reel/generate에서 처리
		return nil, &model.UnsupportedTaskError{TaskType: string(kind)}
	}

	if err != nil {
		return nil, &model.ValidationError{Field: "params", Reason: err.Error()}
	}
	return p, nil
}

// writeTaskError - 에러 종류에 따른 HTTP 상태 코드 매핑
func writeTaskError(w http.ResponseWriter, err error) {
	var validationErr *model.ValidationError
	var unsupportedErr *model.UnsupportedTaskError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &unsupportedErr):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("❌ [Canvas] Generation failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}
