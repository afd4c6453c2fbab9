package domain

import "math"

const (
	MinGrade = 0
	MaxGrade = 5
)

// AverageRating возвращает среднее оценок, округлённое до ближайшего целого
// (половина от нуля), либо 0 для пустого списка.
func AverageRating(ratings []Rating) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Grade
	}
	return int(math.Round(float64(sum) / float64(len(ratings))))
}

// HasRated — ставил ли пользователь оценку этой книге.
func (b Book) HasRated(id UserID) bool {
	for _, r := range b.Ratings {
		if r.UserID == id {
			return true
		}
	}
	return false
}

// WithRating добавляет оценку и пересчитывает среднее. Проверку на повтор
// делает вызывающий (HasRated).
func (b Book) WithRating(r Rating) Book {
	ratings := make([]Rating, 0, len(b.Ratings)+1)
	ratings = append(ratings, b.Ratings...)
	ratings = append(ratings, r)
	b.Ratings = ratings
	b.AverageRating = AverageRating(ratings)
	return b
}
