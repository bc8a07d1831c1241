package bedrock

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "nova-canvas-server/modules/common/config"
)

// Invoker - 동기 모델 호출 인터페이스 (테스트에서 spy 주입용)
type Invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// AsyncInvoker - 비동기 모델 호출 인터페이스
type AsyncInvoker interface {
	StartAsyncInvoke(ctx context.Context, params *bedrockruntime.StartAsyncInvokeInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.StartAsyncInvokeOutput, error)
	GetAsyncInvoke(ctx context.Context, params *bedrockruntime.GetAsyncInvokeInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.GetAsyncInvokeOutput, error)
}

// LoadAWSConfig - AWS 설정 로드 (환경 변수 자동 처리)
func LoadAWSConfig(ctx context.Context) (aws.Config, error) {
	cfg := appconfig.GetConfig()

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}

	// 1. 명시적 액세스 키가 있으면 static credentials 사용 (배포용)
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		log.Println("✅ [Bedrock] Using static AWS credentials from environment")
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	} else {
		// 2. 기본 credential chain 사용 (로컬 프로파일, IAM role 등)
		log.Println("⚠️  [Bedrock] No explicit credentials found, using default credential chain")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("✅ [Bedrock] AWS config loaded for region=%s", cfg.AWSRegion)
	return awsCfg, nil
}

// NewRuntimeClient - Bedrock Runtime 클라이언트 생성
func NewRuntimeClient(ctx context.Context) (*bedrockruntime.Client, error) {
	awsCfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}
