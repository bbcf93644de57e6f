package entity

import (
	"errors"
	"fmt"
)

// ErrNotFound возвращается, когда инспекция с указанным ID отсутствует.
var ErrNotFound = errors.New("inspection not found")

// ValidationError — некорректный ввод вызывающей стороны.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// NewValidationError создаёт ошибку валидации с описанием причины.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// DecodeError — байты не являются читаемым изображением.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode image: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StorageError — сбой базы или файлового хранилища.
// Видимое состояние каталога при этом не меняется.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
