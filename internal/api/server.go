package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	app "railscan/internal/application"
	"railscan/internal/domain/entity"
)

const maxUploadSize = "10M"

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Server — REST-интерфейс каталога инспекций.
type Server struct {
	echo      *echo.Echo
	catalog   *app.CatalogService
	uploadDir string
}

// NewServer собирает маршруты API.
func NewServer(catalog *app.CatalogService, uploadDir string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(maxUploadSize))

	s := &Server{echo: e, catalog: catalog, uploadDir: uploadDir}

	e.GET("/api/health", s.health)
	e.POST("/api/upload", s.upload)
	e.GET("/api/inspections", s.listInspections)
	e.GET("/api/inspections/search", s.searchInspections)
	e.GET("/api/inspections/:id", s.getInspection)
	e.DELETE("/api/inspections/:id", s.deleteInspection)
	e.GET("/api/stats", s.stats)
	e.GET("/api/export/csv", s.exportCSV)
	e.Static("/uploads", uploadDir)

	return s
}

// Start запускает HTTP-сервер.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Echo отдаёт внутренний роутер (для тестов).
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// inspectionDTO — представление инспекции в ответах API.
type inspectionDTO struct {
	ID               int64   `json:"id"`
	Filename         string  `json:"filename"`
	OriginalFilename string  `json:"original_filename"`
	UploadDate       string  `json:"upload_date"`
	AnomaliesCount   int     `json:"anomalies_count"`
	CriticalityScore float64 `json:"criticality_score"`
	CriticalityLevel string  `json:"criticality_level"`
	ProcessingTime   float64 `json:"processing_time"`
	Notes            string  `json:"notes"`
	AnnotatedImage   string  `json:"annotated_image"`
}

func toDTO(insp *entity.Inspection) inspectionDTO {
	return inspectionDTO{
		ID:               insp.ID,
		Filename:         insp.Filename,
		OriginalFilename: insp.OriginalFilename,
		UploadDate:       insp.UploadDate.Format(time.RFC3339),
		AnomaliesCount:   insp.AnomaliesCount,
		CriticalityScore: round(insp.CriticalityScore, 2),
		CriticalityLevel: string(insp.CriticalityLevel),
		ProcessingTime:   round(insp.ProcessingTime, 3),
		Notes:            insp.Notes,
		AnnotatedImage:   insp.AnnotatedImage,
	}
}

func toDTOs(inspections []*entity.Inspection) []inspectionDTO {
	out := make([]inspectionDTO, 0, len(inspections))
	for _, insp := range inspections {
		out = append(out, toDTO(insp))
	}
	return out
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "Railway Track Monitoring API",
	})
}

func (s *Server) upload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return s.fail(c, entity.NewValidationError("no image file provided"))
	}
	if file.Filename == "" {
		return s.fail(c, entity.NewValidationError("no file selected"))
	}
	ext := strings.ToLower(path.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return s.fail(c, entity.NewValidationError("invalid file type %q, allowed: png, jpg, jpeg", ext))
	}

	src, err := file.Open()
	if err != nil {
		return s.fail(c, err)
	}
	data, err := io.ReadAll(src)
	_ = src.Close()
	if err != nil {
		return s.fail(c, err)
	}

	insp, err := s.catalog.AnalyzeAndRecord(c.Request().Context(), data, file.Filename)
	if err != nil {
		return s.fail(c, err)
	}

	log.Printf("Inspection %d recorded: %d anomalies, level %s", insp.ID, insp.AnomaliesCount, insp.CriticalityLevel)
	return c.JSON(http.StatusCreated, echo.Map{
		"success":    true,
		"inspection": toDTO(insp),
		"message":    "Image analyzed successfully",
	})
}

func (s *Server) listInspections(c echo.Context) error {
	ctx := c.Request().Context()
	level := c.QueryParam("level")

	if page := intParam(c, "page", 0); page > 0 {
		pageSize := intParam(c, "page_size", 20)
		items, total, totalPages, err := s.catalog.ListPage(ctx, level, page, pageSize)
		if err != nil {
			return s.fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"success":     true,
			"count":       len(items),
			"total":       total,
			"total_pages": totalPages,
			"page":        page,
			"inspections": toDTOs(items),
		})
	}

	items, err := s.catalog.List(ctx, level, intParam(c, "limit", 0), intParam(c, "offset", 0))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"count":       len(items),
		"inspections": toDTOs(items),
	})
}

func (s *Server) searchInspections(c echo.Context) error {
	items, err := s.catalog.Search(c.Request().Context(), c.QueryParam("q"), intParam(c, "limit", 0))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"count":       len(items),
		"inspections": toDTOs(items),
	})
}

func (s *Server) getInspection(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return s.fail(c, err)
	}
	insp, err := s.catalog.Get(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"inspection": toDTO(insp),
	})
}

func (s *Server) deleteInspection(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.catalog.Delete(c.Request().Context(), id); err != nil {
		return s.fail(c, err)
	}

	log.Printf("Inspection %d deleted", id)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Inspection deleted successfully",
		"id":      id,
	})
}

func (s *Server) stats(c echo.Context) error {
	stats, err := s.catalog.Statistics(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"statistics": echo.Map{
			"total_inspections": stats.Total,
			"criticality_distribution": echo.Map{
				"high":   stats.HighCount,
				"medium": stats.MediumCount,
				"low":    stats.LowCount,
			},
			"average_anomalies": round(stats.AverageAnomalies, 2),
		},
	})
}

func (s *Server) exportCSV(c echo.Context) error {
	data, err := s.catalog.ExportCSV(c.Request().Context())
	if errors.Is(err, entity.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no inspections to export"})
	}
	if err != nil {
		return s.fail(c, err)
	}

	name := fmt.Sprintf("inspections_%s.csv", time.Now().Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+name)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// fail переводит доменные ошибки в HTTP-статусы.
func (s *Server) fail(c echo.Context, err error) error {
	var vErr *entity.ValidationError
	var dErr *entity.DecodeError
	var sErr *entity.StorageError

	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": vErr.Reason})
	case errors.As(err, &dErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot decode image"})
	case errors.Is(err, entity.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.As(err, &sErr):
		log.Printf("Storage error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage failure"})
	default:
		log.Printf("Unexpected error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, entity.NewValidationError("invalid inspection id %q", c.Param("id"))
	}
	return id, nil
}

// intParam читает числовой query-параметр, некорректное значение
// заменяется значением по умолчанию.
func intParam(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// round округляет до n знаков для ответа API.
func round(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}
