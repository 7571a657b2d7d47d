package excerpt

import (
	"sort"
	"strings"

	"github.com/hupe1980/semsearch/model"
)

const (
	// PositionDelimiter separates word positions in the text of a raw excerpt.
	PositionDelimiter = "@@"

	HighlightOpen  = "<hl>"
	HighlightClose = "</hl>"

	OntologyContextId = "YAGO"
	OntologyURL       = "http://www.mpi-inf.mpg.de/yago-naga/yago/"
	OntologyTitle     = "YAGO Ontology"
)

// Excerpt is a piece of the original text of a context.
//
// Raw excerpts have the form "contextId\turl\ttitle\ttext", where the text
// contains a PositionDelimiter in front of every word position. The
// highlighted text is built lazily. An Excerpt is not safe for concurrent use.
type Excerpt struct {
	ContextId string
	URL       string
	Title     string

	text        string
	highlights  []model.Position
	highlighted string
	built       bool
}

// Parse creates an excerpt from a raw excerpt line.
func Parse(raw string, highlights ...model.Position) *Excerpt {
	e := &Excerpt{}
	e.SetRaw(raw)
	e.SetHighlights(highlights)
	return e
}

// NewOntology creates the excerpt of an ontology fact "lhs rel rhs.".
func NewOntology(lhs, relation, rhs string) *Excerpt {
	return &Excerpt{
		ContextId:   OntologyContextId,
		URL:         OntologyURL,
		Title:       OntologyTitle,
		highlighted: lhs + " " + relation + " " + rhs + ".",
		built:       true,
	}
}

// SetRaw replaces the content with a parsed raw excerpt line.
// Missing fields are left empty.
func (e *Excerpt) SetRaw(raw string) {
	raw = strings.TrimSuffix(raw, "\n")
	fields := strings.SplitN(raw, "\t", 4)
	for len(fields) < 4 {
		fields = append(fields, "")
	}
	e.ContextId, e.URL, e.Title, e.text = fields[0], fields[1], fields[2], fields[3]
	e.built = false
}

// SetHighlights sets the word positions to highlight.
func (e *Excerpt) SetHighlights(highlights []model.Position) {
	hl := append([]model.Position(nil), highlights...)
	sort.Slice(hl, func(i, j int) bool { return hl[i] < hl[j] })
	e.highlights = hl
	e.built = false
}

// Highlights returns the sorted highlight positions.
func (e *Excerpt) Highlights() []model.Position {
	return e.highlights
}

// Text returns the text with delimiters removed and highlighted positions
// wrapped in HighlightOpen / HighlightClose.
func (e *Excerpt) Text() string {
	if !e.built {
		e.highlighted = highlight(e.text, e.highlights)
		e.built = true
	}
	return e.highlighted
}

func highlight(text string, highlights []model.Position) string {
	var sb strings.Builder
	sb.Grow(len(text) + len(highlights)*(len(HighlightOpen)+len(HighlightClose)))

	var pos model.Position
	next := 0
	// Skip duplicates and advance to the first highlight >= pos.
	advance := func() {
		for next < len(highlights) && highlights[next] < pos {
			next++
		}
	}

	open := false
	advance()
	if next < len(highlights) && highlights[next] == pos {
		sb.WriteString(HighlightOpen)
		open = true
	}

	for i := 0; i < len(text); {
		if !delimiterStartsAt(text, i) {
			sb.WriteByte(text[i])
			i++
			continue
		}
		i += len(PositionDelimiter)
		pos++
		if open {
			sb.WriteString(HighlightClose)
			open = false
		}
		advance()
		if next < len(highlights) && highlights[next] == pos {
			sb.WriteString(HighlightOpen)
			open = true
		}
	}
	if open {
		sb.WriteString(HighlightClose)
	}
	return sb.String()
}

// delimiterStartsAt reports whether PositionDelimiter starts at byte pos.
func delimiterStartsAt(text string, pos int) bool {
	return pos >= 0 && pos+len(PositionDelimiter) <= len(text) &&
		text[pos:pos+len(PositionDelimiter)] == PositionDelimiter
}

// Raw formats a raw excerpt line (without trailing newline).
func Raw(contextId, url, title, text string) string {
	return contextId + "\t" + url + "\t" + title + "\t" + text
}
