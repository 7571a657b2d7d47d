package vocabulary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hupe1980/semsearch/model"
)

// ErrNotSorted is returned when a vocabulary is not strictly ascending.
var ErrNotSorted = errors.New("vocabulary: words not sorted")

// Vocabulary maps words to ids and back. The id of a word is its position
// in the sorted word list, offset by the first id of the vocabulary's kind.
type Vocabulary struct {
	words []string
	base  model.Id
}

// New creates a vocabulary of the given kind. words must be sorted
// ascending and free of duplicates.
func New(kind model.Kind, words []string) (*Vocabulary, error) {
	for i := 1; i < len(words); i++ {
		if words[i-1] >= words[i] {
			return nil, fmt.Errorf("%w: %q before %q at line %d", ErrNotSorted, words[i-1], words[i], i+1)
		}
	}
	return &Vocabulary{words: words, base: model.FirstId(kind)}, nil
}

// Parse reads one word per line.
func Parse(kind model.Kind, r io.Reader) (*Vocabulary, error) {
	var words []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		words = append(words, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return New(kind, words)
}

// Len returns the number of words.
func (v *Vocabulary) Len() int {
	return len(v.words)
}

// Words returns the sorted words. The slice must not be modified.
func (v *Vocabulary) Words() []string {
	return v.words
}

func (v *Vocabulary) lowerBound(word string) int {
	return sort.SearchStrings(v.words, word)
}

// Id returns the id of word.
func (v *Vocabulary) Id(word string) (model.Id, bool) {
	i := v.lowerBound(word)
	if i == len(v.words) || v.words[i] != word {
		return 0, false
	}
	return v.base + model.Id(i), true
}

// Word returns the word with the given id.
func (v *Vocabulary) Word(id model.Id) (string, bool) {
	if id < v.base || model.IsOntology(id) != model.IsOntology(v.base) {
		return "", false
	}
	i := model.PureValue(id) - model.PureValue(v.base)
	if i >= uint64(len(v.words)) {
		return "", false
	}
	return v.words[i], true
}

// PrefixRange returns the ids of all words starting with prefix.
func (v *Vocabulary) PrefixRange(prefix string) (model.IdRange, bool) {
	first := v.lowerBound(prefix)
	if first == len(v.words) || !strings.HasPrefix(v.words[first], prefix) {
		return model.IdRange{}, false
	}
	// Words sharing the prefix are contiguous: find the first one after
	// first that does not start with it.
	n := sort.Search(len(v.words)-first, func(i int) bool {
		return !strings.HasPrefix(v.words[first+i], prefix)
	})
	return model.IdRange{
		First: v.base + model.Id(first),
		Last:  v.base + model.Id(first+n-1),
	}, true
}

// IdRange resolves a word, or a prefix when it ends with '*'.
// An exact word yields a range of one id.
func (v *Vocabulary) IdRange(wordOrPrefix string) (model.IdRange, bool) {
	if prefix, ok := strings.CutSuffix(wordOrPrefix, string(model.PrefixChar)); ok {
		return v.PrefixRange(prefix)
	}
	id, ok := v.Id(wordOrPrefix)
	if !ok {
		return model.IdRange{}, false
	}
	return model.IdRange{First: id, Last: id}, true
}

// WriteTo writes one word per line.
func (v *Vocabulary) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, word := range v.words {
		m, err := bw.WriteString(word)
		n += int64(m)
		if err != nil {
			return n, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// String returns a human readable dump for debugging.
func (v *Vocabulary) String() string {
	var sb strings.Builder
	for i, w := range v.words {
		fmt.Fprintf(&sb, "%d\t%s\n", v.base+model.Id(i), w)
	}
	return sb.String()
}
