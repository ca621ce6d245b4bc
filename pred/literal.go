package pred

import (
	"fmt"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/seqex"
)

// Literals builds a predicate over []byte data that consumes a dictionary
// entry starting exactly at the left offset. The dictionary is compiled
// once into an Aho-Corasick automaton, so large alternations of byte
// literals stay O(n) to scan.
//
// Example:
//
//	verb, err := pred.Literals([]byte("GET"), []byte("PUT"), []byte("POST"))
//	p := seqex.Must(seqex.NewPredicate("verb", 1, "100%", verb))
func Literals(dictionary ...[]byte) (seqex.PredicateFunc, error) {
	if len(dictionary) == 0 {
		return nil, fmt.Errorf("empty literal dictionary")
	}
	builder := ahocorasick.NewBuilder()
	for _, lit := range dictionary {
		builder.AddPattern(lit)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("building literal automaton: %w", err)
	}

	return func(data any, left, right int) (int, seqex.Details, error) {
		bs, ok := data.([]byte)
		if !ok {
			return 0, nil, fmt.Errorf("want []byte data, got %T", data)
		}
		m := auto.Find(bs[:right+1], left)
		if m == nil || m.Start != left {
			return 0, nil, nil
		}
		return m.End - m.Start, nil, nil
	}, nil
}
