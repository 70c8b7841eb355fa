package tablz

// DType identifies the semantic kind of the values held by a Series.
// The set is closed: every column in a Frame declares exactly one of
// these kinds, and transformers use it to decide how to treat values
// and how to cast numeric results back to the column's declared type.
type DType int

const (
	// Float64 holds floating-point values.
	Float64 DType = iota
	// Int64 holds integer values. Numeric transforms operate in
	// floating point and round back on output.
	Int64
	// String holds string or categorical values.
	String
	// Time holds timestamps.
	Time
)

// String returns the name of the data type.
func (d DType) String() string {
	switch d {
	case Float64:
		return "float64"
	case Int64:
		return "int64"
	case String:
		return "string"
	case Time:
		return "time"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether values of this type participate in
// arithmetic. Statistical transformers require numeric columns.
func (d DType) IsNumeric() bool {
	return d == Float64 || d == Int64
}
