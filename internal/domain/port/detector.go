package port

import (
	"context"

	"railscan/internal/domain/entity"
)

// AnomalyDetector интерфейс детектора аномалий
type AnomalyDetector interface {
	// Detect анализирует снимок и возвращает найденные аномалии
	// вместе с размеченной копией изображения.
	Detect(ctx context.Context, imageData []byte) (*entity.DetectionResult, error)
}
