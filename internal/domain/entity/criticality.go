package entity

import "fmt"

// CriticalityLevel — уровень критичности инспекции.
type CriticalityLevel string

const (
	LevelLow    CriticalityLevel = "low"    // 0–10 аномалий
	LevelMedium CriticalityLevel = "medium" // 11–30 аномалий
	LevelHigh   CriticalityLevel = "high"   // от 31 аномалии
)

// ParseLevel проверяет строковое значение уровня.
func ParseLevel(s string) (CriticalityLevel, bool) {
	switch CriticalityLevel(s) {
	case LevelLow, LevelMedium, LevelHigh:
		return CriticalityLevel(s), true
	}
	return "", false
}

// ScoreCriticality переводит число аномалий в оценку [0, 1], уровень и рекомендацию.
// Уровень определяется только корзиной, в которую попало число аномалий.
// Внутри корзины оценка растёт линейно; в корзине high рампа достигает 1.00
// на 60 аномалиях и дальше не растёт.
func ScoreCriticality(count int) (score float64, level CriticalityLevel, notes string) {
	if count < 0 {
		count = 0
	}

	switch {
	case count <= 10:
		level = LevelLow
		score = 0.05 + float64(count)*0.03
	case count <= 30:
		level = LevelMedium
		score = 0.40 + float64(count-11)*(0.30/19.0)
	default:
		level = LevelHigh
		score = 0.71 + float64(count-31)*(0.29/29.0)
		if score > 1.0 {
			score = 1.0
		}
	}

	return score, level, levelNotes(level, count)
}

// levelNotes возвращает фиксированную рекомендацию для уровня.
func levelNotes(level CriticalityLevel, count int) string {
	if count == 0 {
		return "OK: no significant anomalies detected."
	}
	switch level {
	case LevelHigh:
		return fmt.Sprintf("CRITICAL: %d anomalies detected. Immediate inspection recommended.", count)
	case LevelMedium:
		return fmt.Sprintf("WARNING: %d anomalies detected. Schedule an inspection soon.", count)
	default:
		return fmt.Sprintf("INFO: %d minor anomalies detected. Monitor during next maintenance.", count)
	}
}
