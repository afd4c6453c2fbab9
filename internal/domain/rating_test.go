package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func grades(gs ...int) []Rating {
	out := make([]Rating, 0, len(gs))
	for _, g := range gs {
		out = append(out, Rating{UserID: uuid.New(), Grade: g})
	}
	return out
}

func TestAverageRating(t *testing.T) {
	testCases := []struct {
		name     string
		ratings  []Rating
		expected int
	}{
		{name: "empty", ratings: nil, expected: 0},
		{name: "single", ratings: grades(3), expected: 3},
		{name: "half_rounds_up", ratings: grades(4, 5), expected: 5},
		{name: "thirds_round_down", ratings: grades(4, 5, 2), expected: 4},
		{name: "thirds_round_up", ratings: grades(5, 5, 4), expected: 5},
		{name: "zeros", ratings: grades(0, 0), expected: 0},
		{name: "low_half", ratings: grades(0, 1), expected: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AverageRating(tc.ratings))
		})
	}
}

func TestWithRating(t *testing.T) {
	u1, u2, u3 := uuid.New(), uuid.New(), uuid.New()
	b := Book{Ratings: []Rating{{UserID: u1, Grade: 4}, {UserID: u2, Grade: 5}}}
	b.AverageRating = AverageRating(b.Ratings)
	assert.Equal(t, 5, b.AverageRating)

	rated := b.WithRating(Rating{UserID: u3, Grade: 2})
	assert.Len(t, rated.Ratings, 3)
	assert.Equal(t, 4, rated.AverageRating)
	assert.Equal(t, u3, rated.Ratings[2].UserID)

	// исходная книга не изменилась
	assert.Len(t, b.Ratings, 2)
	assert.Equal(t, 5, b.AverageRating)
}

func TestHasRated(t *testing.T) {
	u1, u2 := uuid.New(), uuid.New()
	b := Book{Ratings: []Rating{{UserID: u1, Grade: 1}}}
	assert.True(t, b.HasRated(u1))
	assert.False(t, b.HasRated(u2))
}

func TestIsOwnedBy(t *testing.T) {
	owner := uuid.New()
	b := Book{UserID: owner}
	assert.True(t, b.IsOwnedBy(owner))
	assert.False(t, b.IsOwnedBy(uuid.New()))
}
