package entity

import "time"

// DetectionResult хранит итог анализа одного снимка.
type DetectionResult struct {
	ImageWidth     int             // ширина изображения
	ImageHeight    int             // высота изображения
	Regions        []AnomalyRegion // список найденных аномалий
	Annotated      []byte          // копия снимка с разметкой (jpeg)
	ProcessingTime float64         // длительность анализа в секундах
}

// Inspection — сохранённая запись об анализе снимка пути.
// ID, Filename и UploadDate выставляются один раз при создании и не меняются.
type Inspection struct {
	ID               int64
	Filename         string // имя файла в хранилище
	OriginalFilename string // имя файла, присланное пользователем
	UploadDate       time.Time
	AnomaliesCount   int
	CriticalityScore float64          // [0, 1], согласован с AnomaliesCount
	CriticalityLevel CriticalityLevel // low / medium / high
	ProcessingTime   float64          // секунды
	Notes            string
	AnnotatedImage   string // имя файла с разметкой в хранилище
}

// Statistics — агрегированные показатели по всему каталогу.
type Statistics struct {
	Total            int
	HighCount        int
	MediumCount      int
	LowCount         int
	AverageAnomalies float64
}
