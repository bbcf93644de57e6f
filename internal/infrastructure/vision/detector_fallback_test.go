//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"railscan/internal/domain/entity"
)

// testImage рисует светлый фон с тёмными прямоугольниками-"дефектами".
func testImage(t *testing.T, defects []image.Rectangle) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	bg := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	for y := 0; y < 600; y++ {
		for x := 0; x < 800; x++ {
			img.SetRGBA(x, y, bg)
		}
	}
	for _, rect := range defects {
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				img.SetRGBA(x, y, color.RGBA{A: 255})
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDetector_FindsDefectRegions(t *testing.T) {
	data := testImage(t, []image.Rectangle{
		image.Rect(100, 100, 150, 200),
		image.Rect(300, 300, 350, 400),
		image.Rect(500, 150, 550, 250),
	})

	result, err := NewDetector().Detect(context.Background(), data)
	require.NoError(t, err)
	require.Equal(t, 800, result.ImageWidth)
	require.Equal(t, 600, result.ImageHeight)
	require.Len(t, result.Regions, 3)

	for _, reg := range result.Regions {
		require.Greater(t, reg.Area, minRegionArea)
		require.Equal(t, reg.Width*reg.Height, reg.Area)
	}
	require.NotEmpty(t, result.Annotated)
	require.GreaterOrEqual(t, result.ProcessingTime, 0.0)

	// разметка остаётся читаемым изображением
	annotated, _, err := image.Decode(bytes.NewReader(result.Annotated))
	require.NoError(t, err)
	require.Equal(t, 800, annotated.Bounds().Dx())
}

func TestDetector_BlankImageHasNoRegions(t *testing.T) {
	data := testImage(t, nil)

	result, err := NewDetector().Detect(context.Background(), data)
	require.NoError(t, err)
	require.Empty(t, result.Regions)
}

func TestDetector_Deterministic(t *testing.T) {
	data := testImage(t, []image.Rectangle{
		image.Rect(100, 100, 160, 220),
		image.Rect(400, 350, 470, 420),
	})
	detector := NewDetector()

	first, err := detector.Detect(context.Background(), data)
	require.NoError(t, err)
	second, err := detector.Detect(context.Background(), data)
	require.NoError(t, err)

	require.Equal(t, first.Regions, second.Regions)
	require.Equal(t, len(first.Regions), len(second.Regions))
}

func TestDetector_DecodeError(t *testing.T) {
	var dErr *entity.DecodeError

	_, err := NewDetector().Detect(context.Background(), []byte("not an image"))
	require.Error(t, err)
	require.ErrorAs(t, err, &dErr)

	_, err = NewDetector().Detect(context.Background(), nil)
	require.ErrorAs(t, err, &dErr)
}
