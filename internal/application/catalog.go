package app

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"railscan/internal/domain/entity"
	"railscan/internal/domain/port"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500 // ограничивает размер ответа
)

// CatalogService владеет каталогом инспекций и всем доступом к нему.
type CatalogService struct {
	repo     port.InspectionRepository
	detector port.AnomalyDetector
	images   port.ImageStore
	mu       sync.Mutex // сериализует мутации каталога
}

// NewCatalogService создаёт каталог поверх хранилищ и детектора.
func NewCatalogService(repo port.InspectionRepository, detector port.AnomalyDetector, images port.ImageStore) *CatalogService {
	return &CatalogService{
		repo:     repo,
		detector: detector,
		images:   images,
	}
}

// AnalyzeAndRecord анализирует снимок и сохраняет результат как новую инспекцию.
// Либо запись фиксируется целиком, либо не появляется вовсе.
func (s *CatalogService) AnalyzeAndRecord(ctx context.Context, imageData []byte, originalFilename string) (*entity.Inspection, error) {
	if len(imageData) == 0 {
		return nil, entity.NewValidationError("empty image payload")
	}
	if strings.TrimSpace(originalFilename) == "" {
		return nil, entity.NewValidationError("original filename is required")
	}
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}

	result, err := s.detector.Detect(ctx, imageData)
	if err != nil {
		return nil, err
	}

	score, level, notes := entity.ScoreCriticality(len(result.Regions))

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.images.SaveOriginal(imageData, originalFilename)
	if err != nil {
		return nil, &entity.StorageError{Op: "save original", Err: err}
	}
	annotatedName, err := s.images.SaveAnnotated(result.Annotated, stored)
	if err != nil {
		s.release(stored)
		return nil, &entity.StorageError{Op: "save annotated", Err: err}
	}

	insp := &entity.Inspection{
		Filename:         stored,
		OriginalFilename: originalFilename,
		UploadDate:       time.Now().UTC(),
		AnomaliesCount:   len(result.Regions),
		CriticalityScore: score,
		CriticalityLevel: level,
		ProcessingTime:   result.ProcessingTime,
		Notes:            notes,
		AnnotatedImage:   annotatedName,
	}
	if err := s.repo.Insert(ctx, insp); err != nil {
		// запись не зафиксировалась — убираем уже сохранённые файлы
		s.release(stored)
		s.release(annotatedName)
		return nil, &entity.StorageError{Op: "insert inspection", Err: err}
	}
	return insp, nil
}

// Get возвращает инспекцию по ID.
func (s *CatalogService) Get(ctx context.Context, id int64) (*entity.Inspection, error) {
	return s.repo.GetByID(ctx, id)
}

// List возвращает инспекции от новых к старым с необязательным фильтром по уровню.
func (s *CatalogService) List(ctx context.Context, level string, limit, offset int) ([]*entity.Inspection, error) {
	lvl, err := parseLevelFilter(level)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, lvl, clampLimit(limit), offset)
}

// ListPage возвращает страницу инспекций и общее число страниц.
// Страницы нумеруются с единицы; страница за пределами диапазона пуста.
func (s *CatalogService) ListPage(ctx context.Context, level string, page, pageSize int) (items []*entity.Inspection, total, totalPages int, err error) {
	lvl, err := parseLevelFilter(level)
	if err != nil {
		return nil, 0, 0, err
	}
	if page < 1 {
		return nil, 0, 0, entity.NewValidationError("page must be >= 1")
	}
	pageSize = clampLimit(pageSize)

	total, err = s.repo.Count(ctx, lvl)
	if err != nil {
		return nil, 0, 0, err
	}
	totalPages = int(math.Ceil(float64(total) / float64(pageSize)))

	items, err = s.repo.List(ctx, lvl, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, 0, err
	}
	return items, total, totalPages, nil
}

// Search ищет инспекции по подстроке исходного имени файла без учёта регистра.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]*entity.Inspection, error) {
	if strings.TrimSpace(query) == "" {
		return nil, entity.NewValidationError("search query is required")
	}
	return s.repo.Search(ctx, query, clampLimit(limit))
}

// Delete удаляет инспекцию и освобождает связанные файлы.
// Повторный вызов для того же ID возвращает entity.ErrNotFound.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	insp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// запись уже удалена; файлы освобождаем по возможности
	s.release(insp.Filename)
	s.release(insp.AnnotatedImage)
	return nil
}

// Statistics считает агрегаты по всему каталогу.
func (s *CatalogService) Statistics(ctx context.Context) (*entity.Statistics, error) {
	return s.repo.Statistics(ctx)
}

// release удаляет файл, сбой удаления только логируется.
func (s *CatalogService) release(name string) {
	if name == "" {
		return
	}
	if err := s.images.Remove(name); err != nil {
		log.Printf("Failed to remove %s: %v", name, err)
	}
}

func parseLevelFilter(level string) (entity.CriticalityLevel, error) {
	if level == "" {
		return "", nil
	}
	lvl, ok := entity.ParseLevel(level)
	if !ok {
		return "", entity.NewValidationError("unknown criticality level %q", level)
	}
	return lvl, nil
}

// clampLimit ограничивает размер выборки.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
