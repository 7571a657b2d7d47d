package excerpt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/semsearch/model"
)

const beginning = "1\tu:X\tt:X\t"

func TestExcerptText(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		highlights []model.Position
		want       string
	}{
		{"EmptyText", beginning, []model.Position{2}, ""},
		{"NoHighlights", beginning + "@@ Hello@@ Albert Einstein@@.", nil, " Hello Albert Einstein."},
		{"HighlightMiddle", beginning + "@@ Hello@@ Albert Einstein@@.", []model.Position{2}, " Hello<hl> Albert Einstein</hl>."},
		{"TrailingDelimiter", beginning + "X@@", nil, "X"},
		{"HighlightFirstWithDelimiter", beginning + "X@@", []model.Position{0}, "<hl>X</hl>"},
		{"HighlightFirstAtEnd", beginning + "X", []model.Position{0}, "<hl>X</hl>"},
		{"UnsortedDuplicates", beginning + "a@@b@@c", []model.Position{2, 0, 2}, "<hl>a</hl>b<hl>c</hl>"},
		{"HighlightBeyondText", beginning + "a@@b", []model.Position{7}, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Parse(tt.raw, tt.highlights...)
			assert.Equal(t, tt.want, e.Text())
			assert.Equal(t, "1", e.ContextId)
			assert.Equal(t, "u:X", e.URL)
			assert.Equal(t, "t:X", e.Title)
		})
	}
}

func TestExcerptSetHighlightsRebuilds(t *testing.T) {
	e := Parse(beginning + "a@@b")
	assert.Equal(t, "ab", e.Text())

	e.SetHighlights([]model.Position{1})
	assert.Equal(t, "a<hl>b</hl>", e.Text())
	assert.Equal(t, []model.Position{1}, e.Highlights())
}

func TestExcerptMissingFields(t *testing.T) {
	e := Parse("42\tsome-url\n")
	assert.Equal(t, "42", e.ContextId)
	assert.Equal(t, "some-url", e.URL)
	assert.Equal(t, "", e.Title)
	assert.Equal(t, "", e.Text())
}

func TestDelimiterStartsAt(t *testing.T) {
	text := "@@ @@ hi@ tree@@"
	for _, pos := range []int{0, 3, 14} {
		assert.True(t, delimiterStartsAt(text, pos), "pos %d", pos)
	}
	for _, pos := range []int{1, 2, 4, 7, 8, 9, 15, 16, 20, -1} {
		assert.False(t, delimiterStartsAt(text, pos), "pos %d", pos)
	}

	assert.True(t, delimiterStartsAt("@@", 0))
	assert.False(t, delimiterStartsAt("", 0))
}

func TestOntologyExcerpt(t *testing.T) {
	e := NewOntology("einstein", "born-in", "ulm")
	assert.Equal(t, OntologyContextId, e.ContextId)
	assert.Equal(t, OntologyURL, e.URL)
	assert.Equal(t, OntologyTitle, e.Title)
	assert.Equal(t, "einstein born-in ulm.", e.Text())
}

func TestHit(t *testing.T) {
	h := Hit{ContextId: 7, Score: 3}
	assert.Equal(t, "(ContextId: 7, Score: 3)", h.String())
	assert.Equal(t, "", h.Text())
	assert.Equal(t, h.String(), h.FullString())

	h.Excerpt = Parse(Raw("7", "u", "t", "x@@y"), 1)
	assert.Equal(t, "x<hl>y</hl>", h.Text())
	assert.Equal(t, "(ContextId:7, URL:u, Title:t, Excerpt:x<hl>y</hl>, Score: 3)", h.FullString())

	oh := NewOntologyHit("a", "rel", "b", 1)
	assert.Equal(t, model.OntologyContextId, oh.ContextId)
	assert.Equal(t, "a rel b.", oh.Text())
}
