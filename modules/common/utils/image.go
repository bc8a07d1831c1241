package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // JPEG 디코더 등록
	"image/png"
	"log"

	_ "github.com/kolesa-team/go-webp/decoder" // WebP 디코더 등록
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// NormalizeImage - base64 이미지를 모델 입력용으로 정규화
//
// The model rejects images with an alpha channel, so a transparent image is
// composited over an opaque white canvas of identical dimensions and
// re-encoded as PNG. In lenient mode (strict=false) a payload that cannot be
// decoded is returned unchanged; the downstream invoker will reject genuinely
// malformed payloads itself. In strict mode the decode error is returned.
func NormalizeImage(b64 string, strict bool) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		if strict {
			return "", fmt.Errorf("failed to decode base64 payload: %w", err)
		}
		log.Printf("⚠️  Normalizer: not valid base64, passing through unchanged")
		return b64, nil
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		if strict {
			return "", fmt.Errorf("failed to decode image: %w", err)
		}
		log.Printf("⚠️  Normalizer: undecodable image, passing through unchanged")
		return b64, nil
	}

	// 투명도가 있으면 흰색 배경 위에 합성
	if !isOpaque(img) {
		log.Printf("🔄 Normalizer: flattening alpha channel onto white background (%s)", format)
		bounds := img.Bounds()
		flattened := image.NewRGBA(bounds)
		draw.Draw(flattened, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
		draw.Draw(flattened, bounds, img, bounds.Min, draw.Over)
		img = flattened
	}

	// PNG 재인코딩
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		if strict {
			return "", fmt.Errorf("failed to re-encode image: %w", err)
		}
		return b64, nil
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// isOpaque - 이미지에 알파 채널이 있는지 검사
func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

// EncodeWebP - PNG/JPEG 바이너리를 WebP로 변환 (프리뷰용)
func EncodeWebP(imageData []byte, quality float32) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	if err := webp.Encode(&webpBuffer, img, options); err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	webpData := webpBuffer.Bytes()

	log.Printf("✅ Image converted to WebP: %d bytes → %d bytes (%.1f%% reduction)",
		len(imageData), len(webpData),
		float64(len(imageData)-len(webpData))/float64(len(imageData))*100)

	return webpData, nil
}
