//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"
	"time"

	_ "image/png"

	"railscan/internal/domain/entity"
	"railscan/internal/domain/port"
)

// Detector ищет аномалии без OpenCV: тот же конвейер реализован на чистом Go.
// Сборка с тегом gocv подменяет его реализацией на gocv.
type Detector struct{}

// NewDetector создаёт детектор с фиксированной калибровкой.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect прогоняет снимок через конвейер:
// декодирование → серый → сглаживание → карта границ → связные области → фильтр по площади.
// Для одинаковых байтов результат всегда одинаков.
func (d *Detector) Detect(ctx context.Context, imageData []byte) (*entity.DetectionResult, error) {
	_ = ctx
	start := time.Now()

	src, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, &entity.DecodeError{Err: err}
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, &entity.DecodeError{Err: errors.New("image has zero size")}
	}

	gray := toGray(src)
	blurred := gaussianBlur(gray, w, h)
	edges := edgeMap(blurred, w, h)
	regions := extractRegions(edges, w, h)

	annotated, err := annotate(src, regions)
	if err != nil {
		return nil, err
	}

	return &entity.DetectionResult{
		ImageWidth:     w,
		ImageHeight:    h,
		Regions:        regions,
		Annotated:      annotated,
		ProcessingTime: time.Since(start).Seconds(),
	}, nil
}

// toGray сводит изображение к одному каналу яркости (BT.601).
func toGray(src image.Image) []uint8 {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out[y*w+x] = uint8((299*(r>>8) + 587*(g>>8) + 114*(bl>>8)) / 1000)
		}
	}
	return out
}

// gaussianBlur применяет разделяемое ядро 5x5 (биномиальное приближение).
func gaussianBlur(src []uint8, w, h int) []uint8 {
	kernel := [blurKernelSize]int{1, 4, 6, 4, 1}

	tmp := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for k := -2; k <= 2; k++ {
				sum += int(src[y*w+clampInt(x+k, 0, w-1)]) * kernel[k+2]
			}
			tmp[y*w+x] = sum / 16
		}
	}

	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for k := -2; k <= 2; k++ {
				sum += tmp[clampInt(y+k, 0, h-1)*w+x] * kernel[k+2]
			}
			out[y*w+x] = uint8(sum / 16)
		}
	}
	return out
}

const (
	markWeak   = 1
	markStrong = 2
)

// edgeMap строит бинарную карту границ: градиент Собеля с двойным порогом,
// слабые точки остаются только в связке с сильными.
func edgeMap(src []uint8, w, h int) []bool {
	marks := make([]uint8, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := int(src[(y-1)*w+x+1]) + 2*int(src[y*w+x+1]) + int(src[(y+1)*w+x+1]) -
				int(src[(y-1)*w+x-1]) - 2*int(src[y*w+x-1]) - int(src[(y+1)*w+x-1])
			gy := int(src[(y+1)*w+x-1]) + 2*int(src[(y+1)*w+x]) + int(src[(y+1)*w+x+1]) -
				int(src[(y-1)*w+x-1]) - 2*int(src[(y-1)*w+x]) - int(src[(y-1)*w+x+1])

			mag := int(math.Sqrt(float64(gx*gx + gy*gy)))
			switch {
			case mag >= edgeThreshold2:
				marks[y*w+x] = markStrong
			case mag >= edgeThreshold1:
				marks[y*w+x] = markWeak
			}
		}
	}

	out := make([]bool, w*h)
	stack := make([]int, 0, w*h/16)
	for i, m := range marks {
		if m == markStrong {
			out[i] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := idx%w, idx/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				n := ny*w + nx
				if marks[n] == markWeak && !out[n] {
					out[n] = true
					stack = append(stack, n)
				}
			}
		}
	}
	return out
}

// extractRegions выделяет связные области на карте границ (8-связность)
// и оставляет только области с площадью больше minRegionArea.
// Обход идёт в порядке растра, поэтому порядок областей детерминирован.
func extractRegions(edges []bool, w, h int) []entity.AnomalyRegion {
	visited := make([]bool, w*h)
	regions := make([]entity.AnomalyRegion, 0)
	stack := make([]int, 0, 256)

	for start, on := range edges {
		if !on || visited[start] {
			continue
		}

		minX, minY := start%w, start/w
		maxX, maxY := minX, minY
		visited[start] = true
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%w, idx/w
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					n := ny*w + nx
					if edges[n] && !visited[n] {
						visited[n] = true
						stack = append(stack, n)
					}
				}
			}
		}

		width, height := maxX-minX+1, maxY-minY+1
		area := width * height
		if area <= minRegionArea {
			continue
		}
		regions = append(regions, entity.AnomalyRegion{
			X:      minX,
			Y:      minY,
			Width:  width,
			Height: height,
			Area:   area,
		})
	}
	return regions
}

// annotate рисует рамки вокруг аномалий и кодирует результат в jpeg.
func annotate(src image.Image, regions []entity.AnomalyRegion) ([]byte, error) {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)

	red := color.RGBA{R: 255, A: 255}
	for _, reg := range regions {
		drawRect(out, reg, red)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawRect рисует рамку толщиной 2 px.
func drawRect(img *image.RGBA, reg entity.AnomalyRegion, c color.RGBA) {
	for t := 0; t < 2; t++ {
		x0, y0 := reg.X-t, reg.Y-t
		x1, y1 := reg.X+reg.Width+t, reg.Y+reg.Height+t
		for x := x0; x <= x1; x++ {
			setPixel(img, x, y0, c)
			setPixel(img, x, y1, c)
		}
		for y := y0; y <= y1; y++ {
			setPixel(img, x0, y, c)
			setPixel(img, x1, y, c)
		}
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Проверка реализации интерфейса
var _ port.AnomalyDetector = (*Detector)(nil)
