package utils

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodePNG(t *testing.T, b64 string) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestNormalizeOpaqueImageKeepsPixels(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}

	out, err := NormalizeImage(encodePNG(t, src), false)
	require.NoError(t, err)

	decoded := decodePNG(t, out)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			wantR, wantG, wantB, wantA := src.At(x, y).RGBA()
			gotR, gotG, gotB, gotA := decoded.At(x, y).RGBA()
			assert.Equal(t, wantR, gotR)
			assert.Equal(t, wantG, gotG)
			assert.Equal(t, wantB, gotB)
			assert.Equal(t, wantA, gotA)
		}
	}
}

func TestNormalizeFlattensTransparencyToWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	// 완전 투명 이미지
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 0})
		}
	}

	out, err := NormalizeImage(encodePNG(t, src), false)
	require.NoError(t, err)

	decoded := decodePNG(t, out)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			r, g, b, a := decoded.At(x, y).RGBA()
			assert.Equal(t, uint32(0xffff), r, "background must be white")
			assert.Equal(t, uint32(0xffff), g)
			assert.Equal(t, uint32(0xffff), b)
			assert.Equal(t, uint32(0xffff), a, "output must carry no transparency")
		}
	}
}

func TestNormalizePreservesPartialAlphaComposite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	// 50% 투명한 검정 → 흰 배경 합성 시 회색
	src.SetNRGBA(0, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 128})

	out, err := NormalizeImage(encodePNG(t, src), false)
	require.NoError(t, err)

	decoded := decodePNG(t, out)
	r, _, _, a := decoded.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.InDelta(t, 0x7fff, int(r), 260.0, "should composite to mid gray")
}

func TestNormalizeLenientPassesThroughUndecodable(t *testing.T) {
	// 유효한 base64지만 이미지가 아님
	payload := base64.StdEncoding.EncodeToString([]byte("not an image"))

	out, err := NormalizeImage(payload, false)
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	// base64조차 아님
	out, err = NormalizeImage("%%%not-base64%%%", false)
	require.NoError(t, err)
	assert.Equal(t, "%%%not-base64%%%", out)
}

func TestNormalizeStrictSurfacesDecodeError(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("not an image"))

	_, err := NormalizeImage(payload, true)
	assert.Error(t, err)

	_, err = NormalizeImage("%%%not-base64%%%", true)
	assert.Error(t, err)
}
