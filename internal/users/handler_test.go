package users

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridian-lms/meridian-lms/internal/shared"
)

func TestPaginate(t *testing.T) {
	listing := []User{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}

	first := paginate(listing, shared.NewPagination(1, 2, len(listing)))
	assert.Equal(t, []int64{1, 2}, ids(first))

	last := paginate(listing, shared.NewPagination(3, 2, len(listing)))
	assert.Equal(t, []int64{5}, ids(last))

	beyond := paginate(listing, shared.NewPagination(9, 2, len(listing)))
	assert.Empty(t, beyond)
}

func ids(users []User) []int64 {
	out := make([]int64, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}
