package tablz

import "fmt"

// ColumnSelector picks the concrete columns a ColumnSpec applies to.
// Selection is either by literal name set (Cols) or by declared data
// type (ByType). Resolution happens once, against the table's schema at
// fit time; the resolved name set is frozen and is not re-evaluated at
// transform time.
type ColumnSelector struct {
	names  []string
	dtypes []DType
	byType bool
}

// Cols selects columns by their exact names. Resolution fails with
// ErrUnknownColumn if any named column is absent from the table.
func Cols(names ...string) ColumnSelector {
	return ColumnSelector{names: append([]string(nil), names...)}
}

// ByType selects every column whose declared type is one of dtypes, in
// the table's declaration order. Selecting a type with no matching
// columns resolves to an empty set; that is not an error.
func ByType(dtypes ...DType) ColumnSelector {
	return ColumnSelector{dtypes: append([]DType(nil), dtypes...), byType: true}
}

// resolve produces the concrete column names for a schema. Name
// selection preserves the selector's own order; type selection follows
// the schema's declaration order.
func (c ColumnSelector) resolve(schema Schema) ([]string, error) {
	if c.byType {
		var out []string
		for _, f := range schema {
			for _, dt := range c.dtypes {
				if f.DType == dt {
					out = append(out, f.Name)
					break
				}
			}
		}
		return out, nil
	}
	known := make(map[string]struct{}, len(schema))
	for _, f := range schema {
		known[f.Name] = struct{}{}
	}
	for _, n := range c.names {
		if _, ok := known[n]; !ok {
			return nil, fmt.Errorf("column %q: %w", n, ErrUnknownColumn)
		}
	}
	return append([]string(nil), c.names...), nil
}
