package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/mux"

	"nova-canvas-server/modules/canvas"
	"nova-canvas-server/modules/common/bedrock"
	"nova-canvas-server/modules/common/config"
	commonredis "nova-canvas-server/modules/common/redis"
	"nova-canvas-server/modules/common/storage"
	"nova-canvas-server/modules/pipeline"
	"nova-canvas-server/modules/preview"
	"nova-canvas-server/modules/progress"
	"nova-canvas-server/modules/reel"
)

var startTime = time.Now()

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "nova-canvas-server",
	})
}

// 서버 메트릭 조회 엔드포인트
func getMetrics(hub *progress.Hub, worker *reel.Worker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"server": map[string]interface{}{
				"uptime":    time.Since(startTime).String(),
				"startTime": startTime,
			},
			"reel": map[string]interface{}{
				"processedJobs": worker.Processed(),
			},
			"progress": map[string]interface{}{
				"currentSubscribers": hub.ClientCount(),
				"totalConnections":   hub.TotalConnections(),
			},
		})
	}
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx := context.Background()

	// AWS 클라이언트 초기화 (Bedrock Runtime + S3)
	bedrockClient, err := bedrock.NewRuntimeClient(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to create Bedrock client: %v", err)
	}

	awsCfg, err := bedrock.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to load AWS config: %v", err)
	}
	store := storage.NewClient(s3.NewFromConfig(awsCfg))

	// Redis 연결
	rdb := commonredis.Connect(cfg)

	// 진행 상황 WebSocket 허브
	hub := progress.NewHub()

	// 모듈 서비스 조립
	canvasService := canvas.NewService(bedrockClient, cfg.CanvasModelID, cfg.StrictNormalize)
	reelService := reel.NewService(bedrockClient, store,
		cfg.ReelModelID, cfg.ReelOutputS3URI,
		time.Duration(cfg.PollIntervalSeconds)*time.Second, cfg.StrictNormalize)
	reelQueue := reel.NewQueue(rdb)
	pipelineService := pipeline.NewService(canvasService, reelQueue, rdb)

	// Redis Queue Worker 시작 (백그라운드)
	worker := reel.NewWorker(rdb, reelQueue, reelService, hub,
		time.Duration(cfg.ReelTimeoutMinutes)*time.Minute)
	go worker.StartWorker()

	// 라우터 설정
	r := mux.NewRouter()

	// CORS 미들웨어 적용
	r.Use(enableCORS)

	// 라우트 설정
	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ws", hub.HandleWebSocket)
	r.HandleFunc("/metrics", getMetrics(hub, worker)).Methods("GET")

	canvas.NewHandler(canvasService).RegisterRoutes(r)
	reel.NewHandler(reelQueue).RegisterRoutes(r)
	pipeline.NewHandler(pipelineService).RegisterRoutes(r)
	preview.NewHandler().RegisterRoutes(r)

	log.Printf("🚀 Nova Canvas Server starting on port %s", cfg.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%s/ws?job=<jobId>", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("📊 Metrics: http://localhost:%s/metrics", cfg.Port)

	// 서버 시작
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
