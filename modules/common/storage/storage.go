package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"nova-canvas-server/modules/common/model"
)

// ObjectFetcher - S3 오브젝트 조회 인터페이스 (테스트에서 spy 주입용)
type ObjectFetcher interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Client struct {
	api ObjectFetcher
}

// NewClient - Storage 클라이언트 생성
func NewClient(api ObjectFetcher) *Client {
	return &Client{api: api}
}

// ParseS3URI - s3://bucket/key 형식의 URI에서 bucket과 key 추출
func ParseS3URI(uri string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(uri, "s3://")
	if trimmed == uri {
		return "", "", fmt.Errorf("not an s3 URI: %q", uri)
	}

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("s3 URI missing bucket or key: %q", uri)
	}

	return parts[0], parts[1], nil
}

// Fetch - S3에서 오브젝트 다운로드
func (c *Client) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	log.Printf("📥 Downloading object from s3://%s/%s", bucket, key)

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &model.RetrievalError{Bucket: bucket, Key: key, Err: err}
	}
	defer out.Body.Close()

	// 오브젝트 데이터 읽기
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &model.RetrievalError{Bucket: bucket, Key: key, Err: err}
	}

	log.Printf("✅ Object downloaded successfully: %d bytes", len(data))
	return data, nil
}
