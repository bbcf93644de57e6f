package storage

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SplitExt отделяет настоящее расширение от имени файла.
// Делит по последней точке, поэтому имена вида "rail.image.v2.jpg"
// не теряют расширение.
func SplitExt(name string) (base, ext string) {
	ext = filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// SafeFilename строит безопасное для хранилища имя из пользовательского.
// Сегменты пути отбрасываются, расширение сохраняется как есть,
// уникальность обеспечивают метка времени и случайный суффикс.
func SafeFilename(originalName string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	base, ext := SplitExt(name)
	base = sanitize(base)
	if base == "" || base == "." || base == ".." {
		base = "upload"
	}
	stamp := now.UTC().Format("20060102_150405")
	return stamp + "_" + uuid.NewString()[:8] + "_" + base + strings.ToLower(ext)
}

// AnnotatedFilename выводит имя размеченной копии из имени в хранилище.
func AnnotatedFilename(storedName string) string {
	base, ext := SplitExt(storedName)
	return base + "_annotated" + ext
}

// sanitize оставляет в имени только безопасные символы.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
