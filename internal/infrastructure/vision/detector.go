//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"time"

	"gocv.io/x/gocv"

	"railscan/internal/domain/entity"
	"railscan/internal/domain/port"
)

// Detector ищет аномалии на снимках рельсового пути через OpenCV.
type Detector struct{}

// NewDetector создаёт детектор с фиксированной калибровкой.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect прогоняет снимок через конвейер:
// декодирование → серый → сглаживание → карта границ → контуры → фильтр по площади.
// Для одинаковых байтов результат всегда одинаков.
func (d *Detector) Detect(ctx context.Context, imageData []byte) (*entity.DetectionResult, error) {
	_ = ctx
	start := time.Now()

	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(blurKernelSize, blurKernelSize), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blur, &edges, edgeThreshold1, edgeThreshold2)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]entity.AnomalyRegion, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		area := rect.Dx() * rect.Dy()
		if area <= minRegionArea {
			continue
		}
		regions = append(regions, entity.AnomalyRegion{
			X:      rect.Min.X,
			Y:      rect.Min.Y,
			Width:  rect.Dx(),
			Height: rect.Dy(),
			Area:   area,
		})
	}

	annotated, err := annotate(mat, regions)
	if err != nil {
		return nil, err
	}

	return &entity.DetectionResult{
		ImageWidth:     mat.Cols(),
		ImageHeight:    mat.Rows(),
		Regions:        regions,
		Annotated:      annotated,
		ProcessingTime: time.Since(start).Seconds(),
	}, nil
}

// annotate рисует рамки вокруг аномалий и кодирует результат в jpeg.
func annotate(src gocv.Mat, regions []entity.AnomalyRegion) ([]byte, error) {
	out := src.Clone()
	defer out.Close()

	red := color.RGBA{R: 255, A: 255}
	for i, reg := range regions {
		rect := image.Rect(reg.X, reg.Y, reg.X+reg.Width, reg.Y+reg.Height)
		gocv.Rectangle(&out, rect, red, 2)
		gocv.PutText(&out, fmt.Sprintf("#%d", i+1), image.Pt(reg.X, reg.Y-10), gocv.FontHersheySimplex, 0.6, red, 2)
	}

	green := color.RGBA{G: 255, A: 255}
	gocv.PutText(&out, fmt.Sprintf("Anomalies detected: %d", len(regions)), image.Pt(10, 30), gocv.FontHersheySimplex, 1, green, 2)

	img, err := out.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		_ = mat.Close()
		return gocv.Mat{}, &entity.DecodeError{Err: errors.New("failed to decode image")}
	}
	return mat, nil
}

// Проверка реализации интерфейса
var _ port.AnomalyDetector = (*Detector)(nil)
