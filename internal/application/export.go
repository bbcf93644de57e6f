package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"railscan/internal/domain/entity"
)

// exportLimit — верхняя граница выгрузки, чтобы не собирать CSV бесконечного размера.
const exportLimit = 10000

// ExportCSV выгружает инспекции в CSV от новых к старым.
// Пустой каталог считается отсутствием данных для выгрузки.
func (s *CatalogService) ExportCSV(ctx context.Context) ([]byte, error) {
	items, err := s.repo.List(ctx, "", exportLimit, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, entity.ErrNotFound
	}
	return marshalCSV(items)
}

func marshalCSV(inspections []*entity.Inspection) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"ID",
		"Filename",
		"Upload Date",
		"Anomalies Count",
		"Criticality Score",
		"Criticality Level",
		"Processing Time (s)",
		"Notes",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, insp := range inspections {
		record := []string{
			strconv.FormatInt(insp.ID, 10),
			insp.OriginalFilename,
			insp.UploadDate.Format(time.RFC3339),
			strconv.Itoa(insp.AnomaliesCount),
			strconv.FormatFloat(insp.CriticalityScore, 'f', 2, 64),
			string(insp.CriticalityLevel),
			strconv.FormatFloat(insp.ProcessingTime, 'f', 3, 64),
			insp.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
