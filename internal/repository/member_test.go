package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMemberSearchQueryDefaults(t *testing.T) {
	query, args := buildMemberSearchQuery(SearchParams{Limit: 20, Offset: 0})

	assert.Contains(t, query, "u.is_public = true")
	assert.Contains(t, query, "ORDER BY u.rating DESC NULLS LAST, u.created_at DESC")
	assert.Contains(t, query, "LIMIT $1 OFFSET $2")
	assert.Equal(t, []interface{}{20, 0}, args)

	// No filters requested, none present
	assert.NotContains(t, query, "ILIKE")
	assert.NotContains(t, query, "u.rating >=")
}

func TestBuildMemberSearchQueryAllFilters(t *testing.T) {
	query, args := buildMemberSearchQuery(SearchParams{
		Query:        "guitar",
		Location:     "Mumbai",
		Availability: "weekends",
		MinRating:    4,
		Limit:        10,
		Offset:       30,
	})

	assert.Contains(t, query, "u.name ILIKE $1")
	assert.Contains(t, query, "user_skills_offered")
	assert.Contains(t, query, "user_skills_wanted")
	assert.Contains(t, query, "u.location ILIKE $2")
	assert.Contains(t, query, "u.availability ILIKE $3")
	assert.Contains(t, query, "u.rating >= $4")
	assert.Contains(t, query, "LIMIT $5 OFFSET $6")
	assert.Equal(t, []interface{}{"%guitar%", "%Mumbai%", "%weekends%", 4.0, 10, 30}, args)
}

func TestBuildMemberSearchQueryPlaceholdersMatchArgs(t *testing.T) {
	query, args := buildMemberSearchQuery(SearchParams{
		Query:     "yoga",
		MinRating: 3.5,
		Limit:     20,
	})

	// Highest placeholder index must equal the argument count
	max := 0
	for i := 1; i <= 10; i++ {
		if strings.Contains(query, fmt.Sprintf("$%d", i)) {
			max = i
		}
	}
	assert.Equal(t, len(args), max)
}
