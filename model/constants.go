package model

// Ontology naming conventions shared by the index builder and the query layer.
const (
	EntityPrefix   = ":e:"
	RelationPrefix = ":r:"
	TypePrefix     = ":t:"

	// ReversedSuffix marks the materialized reverse direction of a relation.
	ReversedSuffix = "_(reversed)"

	// PrefixChar at the end of a query word requests a prefix match.
	PrefixChar = '*'

	// VariableStart marks query variables.
	VariableStart = '$'
)

// Names of the relations with special meaning.
const (
	HasRelationsRelation = RelationPrefix + "has-relations"
	HasInstancesRelation = RelationPrefix + "has-instances"
	IsARelation          = RelationPrefix + "is-a"
	EqualsRelation       = RelationPrefix + "equals"
	OccursWithRelation   = RelationPrefix + "occurs-with"
)

// Fixed scores assigned by ontology lookups.
const (
	EntityFromRelationScore AggregatedScore = 1
	EntityEqualsScore       AggregatedScore = 1
)

// OntologyContextId is used for hits that stem from ontology facts rather
// than text.
const OntologyContextId Id = MaxId

// ReverseRelation toggles the reversed marker on a relation name.
func ReverseRelation(name string) string {
	n := len(name) - len(ReversedSuffix)
	if n >= 0 && name[n:] == ReversedSuffix {
		return name[:n]
	}
	return name + ReversedSuffix
}

// LastPart returns the part of s behind the last ':'.
func LastPart(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return s[i+1:]
		}
	}
	return s
}
