package entity

// AnomalyRegion представляет область с обнаруженной аномалией
type AnomalyRegion struct {
	X      int // координата X левого верхнего угла
	Y      int // координата Y левого верхнего угла
	Width  int // ширина области в пикселях
	Height int // высота области в пикселях
	Area   int // площадь области в пикселях
}

// Center возвращает координаты центра аномалии
func (r AnomalyRegion) Center() (x, y int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}
