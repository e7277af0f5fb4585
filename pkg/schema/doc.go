// Package schema types the values of a keyed document slice.
//
// A Schema maps keys to types. Keys without a type accept anything, and typed
// keys may be absent; only present values are checked:
//
//	s, err := schema.Parse(map[string]string{
//	    "title":   "string",
//	    "retries": "int",
//	    "tags":    "[string]",
//	})
//
//	err = s.Check(map[string]any{"title": 42}) // field "title": expected string (got int)
//
// Values are checked as they look after a JSON round trip: whole float64
// values pass as int and []any passes as a slice.
package schema
