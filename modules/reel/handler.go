package reel

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"nova-canvas-server/modules/common/model"
)

// Handler - Reel HTTP 핸들러 (enqueue + 조회)
type Handler struct {
	queue *Queue
}

// EnqueueResponse - 작업 제출 응답
type EnqueueResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// StatusResponse - 작업 상태 응답 (비디오 본문 제외)
type StatusResponse struct {
	JobID        string `json:"jobId"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	UpdatedAt    string `json:"updatedAt"`
}

// ResultResponse - 완료된 작업의 비디오 (base64)
type ResultResponse struct {
	JobID       string `json:"jobId"`
	VideoBase64 string `json:"videoBase64"`
}

// NewHandler - Handler 생성
func NewHandler(queue *Queue) *Handler {
	return &Handler{queue: queue}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/reel/generate", h.HandleGenerate).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/reel/status/{jobId}", h.HandleStatus).Methods("GET")
	r.HandleFunc("/api/reel/result/{jobId}", h.HandleResult).Methods("GET")
	log.Println("✅ Reel routes registered: /api/reel/generate, /api/reel/status, /api/reel/result")
}

// HandleGenerate - POST /api/reel/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var params VideoParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// 필수 필드 검증 (큐에 넣기 전에)
	if params.Text == "" {
		http.Error(w, "text prompt is required", http.StatusBadRequest)
		return
	}

	jobID, err := h.queue.Enqueue(r.Context(), params)
	if err != nil {
		log.Printf("❌ [Reel] Failed to enqueue job: %v", err)
		http.Error(w, "failed to submit job", http.StatusInternalServerError)
		return
	}

	log.Printf("📥 [Reel] Video job enqueued: %s", jobID)
	json.NewEncoder(w).Encode(EnqueueResponse{JobID: jobID, Status: model.StatusPending})
}

// HandleStatus - GET /api/reel/status/{jobId}
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	jobID := mux.Vars(r)["jobId"]
	job, err := h.queue.Get(r.Context(), jobID)
	if err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(StatusResponse{
		JobID:        job.JobID,
		Status:       job.Status,
		ErrorMessage: job.ErrorMessage,
		UpdatedAt:    job.UpdatedAt,
	})
}

// HandleResult - GET /api/reel/result/{jobId}
func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	jobID := mux.Vars(r)["jobId"]
	job, err := h.queue.Get(r.Context(), jobID)
	if err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	if job.Status != model.StatusCompleted {
		http.Error(w, "job not completed: "+job.Status, http.StatusConflict)
		return
	}

	json.NewEncoder(w).Encode(ResultResponse{
		JobID:       job.JobID,
		VideoBase64: job.VideoBase64,
	})
}
