package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripleKeys(t *testing.T) {
	city := NewNode(NewDisjunct(NewIsATriple(":e:city:City")))
	assert.Equal(t, "<NODE <D <-- :r:is-a :e:city:City>>>", city.Key())

	ow := NewOccursWithTriple([]string{"born", "albert", "born"}, city, city)
	assert.Equal(t, "<-- :r:occurs-with (albert born <NODE <D <-- :r:is-a :e:city:City>>>)>", ow.Key())
	assert.Equal(t, []string{"albert", "born"}, ow.Words())
	assert.Len(t, ow.Subtrees(), 1)

	rel := NewRelationTriple(":r:born-in", city)
	assert.Equal(t, "<-- :r:born-in <NODE <D <-- :r:is-a :e:city:City>>>>", rel.Key())

	assert.Equal(t, "<-- :r:equals :e:ulm>", NewEqualsTriple(":e:ulm").Key())
}

func TestDisjunctOrder(t *testing.T) {
	city := NewNode(NewDisjunct(NewIsATriple(":e:city:City")))
	d := NewDisjunct(
		NewEqualsTriple(":e:ulm"),
		NewRelationTriple(":r:born-in", city),
		NewOccursWithTriple([]string{"born"}),
		NewIsATriple(":e:person:Person"),
		NewIsATriple(":e:person:Person"),
	)

	keys := make([]string, len(d.Triples()))
	for i, tr := range d.Triples() {
		keys[i] = tr.Key()
	}
	assert.Equal(t, []string{
		"<-- :r:is-a :e:person:Person>",
		"<-- :r:occurs-with (born)>",
		"<-- :r:born-in <NODE <D <-- :r:is-a :e:city:City>>>>",
		"<-- :r:equals :e:ulm>",
	}, keys)
}

func TestConstructFromTriples(t *testing.T) {
	n, err := ConstructFromTriples("$1 :r:is-a :e:person:Person; $1 :r:occurs-with born $2; $2 :r:is-a :e:city:City", "$1")
	require.NoError(t, err)
	assert.Equal(t,
		"<NODE <D <-- :r:is-a :e:person:Person> <-- :r:occurs-with (born <NODE <D <-- :r:is-a :e:city:City>>>)>>>",
		n.Key())

	// Triple order and whitespace do not change the tree.
	m, err := ConstructFromTriples(" $2 :r:is-a   :e:city:City;$1 :r:occurs-with born $2 ; $1 :r:is-a :e:person:Person", "$1")
	require.NoError(t, err)
	assert.Equal(t, n.Key(), m.Key())
}

func TestConstructReversed(t *testing.T) {
	// Rooted at $2, the relation is followed backwards.
	n, err := ConstructFromTriples("$1 :r:born-in $2; $1 :r:equals :e:albert-einstein", "$2")
	require.NoError(t, err)
	assert.Equal(t,
		"<NODE <D <-- :r:born-in_(reversed) <NODE <D <-- :r:equals :e:albert-einstein>>>>>>",
		n.Key())

	n, err = ConstructFromTriples(
		"$1 :r:is-a :e:person:Person; $1 :r:occurs-with physics $2; $2 :r:equals :e:marie-curie", "$2")
	require.NoError(t, err)
	assert.Equal(t,
		"<NODE <D <-- :r:occurs-with (physics <NODE <D <-- :r:is-a :e:person:Person>>>)> <-- :r:equals :e:marie-curie>>>",
		n.Key())
}

func TestConstructErrors(t *testing.T) {
	tests := []struct {
		name    string
		triples string
		root    string
		want    error
	}{
		{"root not a variable", "$1 :r:is-a :e:city:City", "x", ErrBadQuery},
		{"missing root", "$1 :r:is-a :e:city:City", "$2", ErrBadQuery},
		{"empty triple", "$1 :r:is-a :e:city:City;", "$1", ErrBadQuery},
		{"too short", "$1 :r:is-a", "$1", ErrBadQuery},
		{"subject not a variable", "x :r:is-a :e:city:City", "$1", ErrBadQuery},
		{"is-a with variable", "$1 :r:is-a $2; $2 :r:is-a :e:city:City", "$1", ErrBadQuery},
		{"equals with two words", "$1 :r:equals :e:ulm :e:paris", "$1", ErrBadQuery},
		{"relation with word", "$1 :r:born-in :e:ulm", "$1", ErrBadQuery},
		{"disconnected", "$1 :r:is-a :e:city:City; $2 :r:is-a :e:person:Person", "$1", ErrBadQuery},
		{"unconstrained", "$1 :r:born-in $2", "$1", ErrBadQuery},
		{"self reference", "$1 :r:married-to $1", "$1", ErrCyclicQuery},
		{"cycle", "$1 :r:born-in $2; $2 :r:married-to $3; $3 :r:married-to $1; $3 :r:is-a :e:person:Person", "$1", ErrCyclicQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConstructFromTriples(tt.triples, tt.root)
			require.ErrorIs(t, err, tt.want)

			var qe *QueryError
			require.True(t, errors.As(err, &qe))
			assert.Equal(t, tt.triples, qe.Triples)
			assert.Equal(t, tt.root, qe.Root)
		})
	}
}

func TestQueryString(t *testing.T) {
	q, err := New("$1 :r:is-a :e:scientist:Scientist", "$1", Parameters{Prefix: "ein"})
	require.NoError(t, err)
	assert.Equal(t, `Semantic query with prefix: "ein": { <NODE <D <-- :r:is-a :e:scientist:Scientist>>> }`, q.String())

	q, err = New("", "", Parameters{Prefix: "ci"})
	require.NoError(t, err)
	assert.Nil(t, q.Tree())
	assert.Equal(t, `Query without triples for prefix: "ci"`, q.String())
}

func TestParametersNormalize(t *testing.T) {
	p := Parameters{Prefix: " ein ", FirstWord: -3, NofWords: 5000, NofHitGroups: -1, FirstClass: 7}.Normalize()
	assert.Equal(t, Parameters{Prefix: "ein", NofWords: MaxPageSize, FirstClass: 7}, p)
}
