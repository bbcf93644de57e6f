package port

// ImageStore интерфейс файлового хранилища снимков
type ImageStore interface {
	// SaveOriginal сохраняет исходный снимок под безопасным именем
	// и возвращает это имя.
	SaveOriginal(data []byte, originalName string) (string, error)

	// SaveAnnotated сохраняет размеченную копию рядом с исходным файлом.
	SaveAnnotated(data []byte, storedName string) (string, error)

	// Load читает сохранённый файл.
	Load(name string) ([]byte, error)

	// Remove удаляет файл; отсутствие файла ошибкой не считается.
	Remove(name string) error
}
