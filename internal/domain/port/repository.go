package port

import (
	"context"

	"railscan/internal/domain/entity"
)

// InspectionRepository интерфейс хранилища инспекций
type InspectionRepository interface {
	// Insert сохраняет новую инспекцию и проставляет ей ID.
	Insert(ctx context.Context, insp *entity.Inspection) error

	// GetByID возвращает инспекцию или entity.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*entity.Inspection, error)

	// List возвращает инспекции от новых к старым.
	// Пустой level означает отсутствие фильтра.
	List(ctx context.Context, level entity.CriticalityLevel, limit, offset int) ([]*entity.Inspection, error)

	// Count возвращает число инспекций с учётом фильтра по уровню.
	Count(ctx context.Context, level entity.CriticalityLevel) (int, error)

	// Search ищет по подстроке исходного имени файла без учёта регистра.
	Search(ctx context.Context, query string, limit int) ([]*entity.Inspection, error)

	// Delete удаляет инспекцию или возвращает entity.ErrNotFound.
	Delete(ctx context.Context, id int64) error

	// Statistics считает агрегаты по всем инспекциям.
	Statistics(ctx context.Context) (*entity.Statistics, error)
}
