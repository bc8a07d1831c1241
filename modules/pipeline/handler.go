package pipeline

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"nova-canvas-server/modules/common/model"
)

// Handler - 파이프라인 HTTP 핸들러
type Handler struct {
	service *Service
}

// StartRequest - 파이프라인 시작 요청
type StartRequest struct {
	ProductPrompt string `json:"productPrompt"`
}

// NewHandler - Handler 생성
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/pipeline/start", h.HandleStart).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/pipeline/{runId}/advance", h.HandleAdvance).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/pipeline/{runId}", h.HandleGet).Methods("GET")
	log.Println("✅ Pipeline routes registered: /api/pipeline/start, /api/pipeline/{runId}/advance")
}

// HandleStart - POST /api/pipeline/start
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	run, err := h.service.Start(r.Context(), req.ProductPrompt)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	json.NewEncoder(w).Encode(run)
}

// HandleAdvance - POST /api/pipeline/{runId}/advance
func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var input AdvanceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	run, err := h.service.Advance(r.Context(), mux.Vars(r)["runId"], input)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	json.NewEncoder(w).Encode(run)
}

// HandleGet - GET /api/pipeline/{runId}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	run, err := h.service.Get(r.Context(), mux.Vars(r)["runId"])
	if err != nil {
		http.Error(w, "pipeline run not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(run)
}

// writePipelineError - 에러 종류별 상태 코드 매핑
func writePipelineError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrRunNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Printf("❌ [Pipeline] Step failed: %v", err)
	http.Error(w, err.Error(), http.StatusBadGateway)
}
