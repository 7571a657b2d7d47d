// Package codec renders query results for clients.
//
// A Codec turns a Document, the wire form of a query.QueryResult, into
// bytes and back. Two JSON codecs are built in: the standard library
// ("json") and github.com/goccy/go-json ("go-json"). Both produce the same
// document.
package codec

import (
	"encoding/json"

	gojson "github.com/goccy/go-json"
)

// Codec encodes result documents. Implementations must be safe for
// concurrent use.
type Codec interface {
	Name() string
	Encode(d Document) ([]byte, error)
	Decode(data []byte) (Document, error)
}

var (
	// JSON encodes documents with encoding/json.
	JSON Codec = stdJSON{}
	// GoJSON encodes documents with github.com/goccy/go-json.
	GoJSON Codec = goJSON{}
	// Default is used when no codec is configured.
	Default = GoJSON
)

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	for _, c := range []Codec{JSON, GoJSON} {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

type stdJSON struct{}

func (stdJSON) Name() string                      { return "json" }
func (stdJSON) Encode(d Document) ([]byte, error) { return json.Marshal(d) }

func (stdJSON) Decode(data []byte) (Document, error) {
	var d Document
	err := json.Unmarshal(data, &d)
	return d, err
}

type goJSON struct{}

func (goJSON) Name() string                      { return "go-json" }
func (goJSON) Encode(d Document) ([]byte, error) { return gojson.Marshal(d) }

func (goJSON) Decode(data []byte) (Document, error) {
	var d Document
	err := gojson.Unmarshal(data, &d)
	return d, err
}

// Pretty renders any value as indented JSON for terminals.
func Pretty(v any) ([]byte, error) {
	return gojson.MarshalIndent(v, "", "  ")
}
