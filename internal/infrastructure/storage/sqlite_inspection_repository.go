package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // драйвер SQLite

	"railscan/internal/domain/entity"
	"railscan/internal/domain/port"
)

// Запросы создания схемы выполняются по одному:
// драйвер не гарантирует исполнение нескольких стейтментов в одном Exec.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS inspections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		upload_date TEXT NOT NULL,
		anomalies_count INTEGER NOT NULL DEFAULT 0,
		criticality_score REAL NOT NULL DEFAULT 0,
		criticality_level TEXT NOT NULL,
		processing_time REAL NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		annotated_image TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inspections_upload_date ON inspections(upload_date)`,
	`CREATE INDEX IF NOT EXISTS idx_inspections_level ON inspections(criticality_level)`,
}

const selectColumns = `id, filename, original_filename, upload_date, anomalies_count,
	criticality_score, criticality_level, processing_time, notes, annotated_image`

// Метка времени хранится с фиксированной шириной наносекунд:
// RFC3339Nano отбрасывает нули в конце и ломает сортировку по тексту.
const uploadDateFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteInspectionRepository хранит инспекции в файле SQLite.
type SQLiteInspectionRepository struct {
	db *sql.DB
}

// OpenSQLite открывает (или создаёт) базу инспекций в каталоге dir.
func OpenSQLite(dir string) (*SQLiteInspectionRepository, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	dbPath := filepath.Join(dir, "inspections.db")

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite поддерживает только одного писателя.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &SQLiteInspectionRepository{db: db}, nil
}

// Close закрывает соединение с базой.
func (r *SQLiteInspectionRepository) Close() error {
	return r.db.Close()
}

// Insert сохраняет новую инспекцию и проставляет ей ID.
func (r *SQLiteInspectionRepository) Insert(ctx context.Context, insp *entity.Inspection) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO inspections (
		filename, original_filename, upload_date, anomalies_count,
		criticality_score, criticality_level, processing_time, notes, annotated_image
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		insp.Filename,
		insp.OriginalFilename,
		insp.UploadDate.UTC().Format(uploadDateFormat),
		insp.AnomaliesCount,
		insp.CriticalityScore,
		string(insp.CriticalityLevel),
		insp.ProcessingTime,
		insp.Notes,
		insp.AnnotatedImage,
	)
	if err != nil {
		return fmt.Errorf("insert inspection: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	insp.ID = id
	return nil
}

// GetByID возвращает инспекцию или entity.ErrNotFound.
func (r *SQLiteInspectionRepository) GetByID(ctx context.Context, id int64) (*entity.Inspection, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM inspections WHERE id = ?`, id)
	insp, err := scanInspection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get inspection %d: %w", id, err)
	}
	return insp, nil
}

// List возвращает инспекции от новых к старым с необязательным фильтром по уровню.
func (r *SQLiteInspectionRepository) List(ctx context.Context, level entity.CriticalityLevel, limit, offset int) ([]*entity.Inspection, error) {
	query := `SELECT ` + selectColumns + ` FROM inspections`
	args := make([]any, 0, 3)
	if level != "" {
		query += ` WHERE criticality_level = ?`
		args = append(args, string(level))
	}
	query += ` ORDER BY upload_date DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	defer rows.Close()

	return collectInspections(rows)
}

// Count возвращает число инспекций с учётом фильтра по уровню.
func (r *SQLiteInspectionRepository) Count(ctx context.Context, level entity.CriticalityLevel) (int, error) {
	query := `SELECT COUNT(*) FROM inspections`
	args := make([]any, 0, 1)
	if level != "" {
		query += ` WHERE criticality_level = ?`
		args = append(args, string(level))
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count inspections: %w", err)
	}
	return count, nil
}

// Search ищет по подстроке исходного имени файла без учёта регистра.
func (r *SQLiteInspectionRepository) Search(ctx context.Context, query string, limit int) ([]*entity.Inspection, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM inspections
		WHERE LOWER(original_filename) LIKE '%' || LOWER(?) || '%'
		ORDER BY upload_date DESC, id DESC LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search inspections: %w", err)
	}
	defer rows.Close()

	return collectInspections(rows)
}

// Delete удаляет инспекцию или возвращает entity.ErrNotFound.
func (r *SQLiteInspectionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inspections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete inspection %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// Statistics считает агрегаты по всем инспекциям одним запросом.
func (r *SQLiteInspectionRepository) Statistics(ctx context.Context) (*entity.Statistics, error) {
	row := r.db.QueryRowContext(ctx, `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN criticality_level = 'high' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN criticality_level = 'medium' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN criticality_level = 'low' THEN 1 ELSE 0 END), 0),
		COALESCE(AVG(anomalies_count), 0)
	FROM inspections`)

	var stats entity.Statistics
	if err := row.Scan(&stats.Total, &stats.HighCount, &stats.MediumCount, &stats.LowCount, &stats.AverageAnomalies); err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	return &stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInspection(row rowScanner) (*entity.Inspection, error) {
	var insp entity.Inspection
	var uploadDate, level string
	if err := row.Scan(
		&insp.ID,
		&insp.Filename,
		&insp.OriginalFilename,
		&uploadDate,
		&insp.AnomaliesCount,
		&insp.CriticalityScore,
		&level,
		&insp.ProcessingTime,
		&insp.Notes,
		&insp.AnnotatedImage,
	); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, uploadDate)
	if err != nil {
		return nil, fmt.Errorf("parse upload_date: %w", err)
	}
	insp.UploadDate = ts
	insp.CriticalityLevel = entity.CriticalityLevel(level)
	return &insp, nil
}

func collectInspections(rows *sql.Rows) ([]*entity.Inspection, error) {
	inspections := make([]*entity.Inspection, 0)
	for rows.Next() {
		insp, err := scanInspection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inspection: %w", err)
		}
		inspections = append(inspections, insp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inspections: %w", err)
	}
	return inspections, nil
}

// Проверка реализации интерфейса
var _ port.InspectionRepository = (*SQLiteInspectionRepository)(nil)
