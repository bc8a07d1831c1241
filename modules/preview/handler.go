package preview

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"nova-canvas-server/modules/common/utils"
)

// 프리뷰용 WebP 품질 (생성 원본은 PNG로 유지)
const previewQuality = 75

// Handler handles lightweight image previews without queueing.
type Handler struct{}

type Request struct {
	ImageBase64 string `json:"imageBase64"`
}

type Response struct {
	WebPBase64 string `json:"webpBase64"`
}

// NewHandler creates a handler instance.
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes wires preview endpoints.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/preview/webp", h.handleWebP).Methods("POST", "OPTIONS")
}

// handleWebP - 생성된 PNG를 가벼운 WebP로 변환해 반환 (UI 썸네일용)
func (h *Handler) handleWebP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		http.Error(w, "imageBase64 is not valid base64", http.StatusBadRequest)
		return
	}

	webpData, err := utils.EncodeWebP(raw, previewQuality)
	if err != nil {
		log.Printf("❌ [Preview] WebP conversion failed: %v", err)
		http.Error(w, "failed to convert image", http.StatusUnprocessableEntity)
		return
	}

	json.NewEncoder(w).Encode(Response{
		WebPBase64: base64.StdEncoding.EncodeToString(webpData),
	})
}
