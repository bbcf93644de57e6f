package vision

// Константы калибровки конвейера. Подобраны по реальным снимкам пути;
// при их изменении меняется и итоговое число аномалий.
const (
	blurKernelSize = 5   // ядро гауссова сглаживания
	edgeThreshold1 = 50  // нижний порог градиента
	edgeThreshold2 = 150 // верхний порог градиента
	minRegionArea  = 500 // минимальная площадь аномалии, px²
	jpegQuality    = 90
)
