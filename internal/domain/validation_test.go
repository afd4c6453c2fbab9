package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("reader@example.com"))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("reader"))
	assert.False(t, ValidEmail(" reader@example.com"))
	assert.False(t, ValidEmail("Reader <reader@example.com>"))
}

func TestValidPassword(t *testing.T) {
	assert.True(t, ValidPassword("pw"))
	assert.True(t, ValidPassword(strings.Repeat("x", MaxPasswordBytes)))
	assert.False(t, ValidPassword(strings.Repeat("x", MaxPasswordBytes+1)))
	assert.False(t, ValidPassword(" "))
}

func TestBookInputValidate(t *testing.T) {
	u := uuid.New()
	valid := BookInput{Title: "Dune", Author: "Frank Herbert", Year: 1965, Genre: "SF"}

	testCases := []struct {
		name    string
		mutate  func(in *BookInput)
		wantErr bool
	}{
		{name: "valid", mutate: func(in *BookInput) {}},
		{name: "no_title", mutate: func(in *BookInput) { in.Title = "  " }, wantErr: true},
		{name: "no_author", mutate: func(in *BookInput) { in.Author = "" }, wantErr: true},
		{name: "no_genre", mutate: func(in *BookInput) { in.Genre = "" }, wantErr: true},
		{name: "grade_too_high", mutate: func(in *BookInput) { in.Ratings = []Rating{{UserID: u, Grade: 6}} }, wantErr: true},
		{name: "grade_negative", mutate: func(in *BookInput) { in.Ratings = []Rating{{UserID: u, Grade: -1}} }, wantErr: true},
		{name: "duplicate_rater", mutate: func(in *BookInput) {
			in.Ratings = []Rating{{UserID: u, Grade: 3}, {UserID: u, Grade: 4}}
		}, wantErr: true},
		{name: "ratings_ok", mutate: func(in *BookInput) {
			in.Ratings = []Rating{{UserID: u, Grade: 0}, {UserID: uuid.New(), Grade: 5}}
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			err := in.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrBadParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBookPatchValidate(t *testing.T) {
	empty := ""
	title := "New title"
	assert.NoError(t, BookPatch{}.Validate())
	assert.NoError(t, BookPatch{Title: &title}.Validate())
	assert.ErrorIs(t, BookPatch{Genre: &empty}.Validate(), ErrBadParams)
	assert.True(t, BookPatch{}.Empty())
	assert.False(t, BookPatch{Title: &title}.Empty())
}
