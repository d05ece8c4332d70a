package filter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fy0/searchclause/filter"
)

func TestFieldsFromStruct_ScalarFields(t *testing.T) {
	type articleRow struct {
		ArticleID int64     `json:"id" db:"article_id"`
		Reference string    `json:"reference" search:",like"`
		Label     string    `search:"label,like,column=LOWER(a.label)"`
		Status    int       `gorm:"column:status_id"`
		Year      int       `search:"year,column=YEAR(a.date)"`
		Date      time.Time `db:"date"`
		Internal  string    `search:"-"`

		unexported string
	}

	row := articleRow{unexported: "ignored"}
	got, err := filter.FieldsFromStruct("a", row)
	require.NoError(t, err)

	want := filter.FieldMapping{
		{Key: "id", Column: "a.article_id"},
		{Key: "reference", Column: "a.reference"},
		{Key: "label", Column: "LOWER(a.label)"},
		{Key: "status", Column: "a.status_id"},
		{Key: "year", Column: "YEAR(a.date)"},
		{Key: "date", Column: "a.date"},
	}
	assert.Equal(t, want, got.Fields)
	assert.Equal(t, []string{"reference", "label"}, got.DefaultLike)
}

func TestFieldsFromStruct_EmbeddedStruct(t *testing.T) {
	type base struct {
		CreatorID int64 `json:"creator_id" db:"creator_id"`
	}
	type articleRow struct {
		base
		ArticleID int64 `json:"article_id" db:"id"`
	}

	got, err := filter.FieldsFromStruct("", &articleRow{})
	require.NoError(t, err)

	want := filter.FieldMapping{
		{Key: "creator_id", Column: "creator_id"},
		{Key: "article_id", Column: "id"},
	}
	assert.Equal(t, want, got.Fields)
}

func TestFieldsFromStruct_Errors(t *testing.T) {
	type dup struct {
		A string `json:"name"`
		B string `search:"name"`
	}

	_, err := filter.FieldsFromStruct("t", dup{})
	assert.Error(t, err, "duplicate key")
	_, err = filter.FieldsFromStruct("t", 42)
	assert.Error(t, err, "non-struct model")
	_, err = filter.FieldsFromStruct("t", nil)
	assert.Error(t, err, "nil model")
}
