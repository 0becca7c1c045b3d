package manifest

import (
	"github.com/buger/jsonparser"
)

// Field readers never fail: a missing key or a value of the wrong type reads
// as the zero value (or the given default).

func stringField(obj []byte, key string) string {
	v, typ, _, err := jsonparser.Get(obj, key)
	if err != nil || typ != jsonparser.String {
		return ""
	}
	s, err := jsonparser.ParseString(v)
	if err != nil {
		return ""
	}
	return s
}

func boolField(obj []byte, key string, def bool) bool {
	v, typ, _, err := jsonparser.Get(obj, key)
	if err != nil || typ != jsonparser.Boolean {
		return def
	}
	b, err := jsonparser.ParseBoolean(v)
	if err != nil {
		return def
	}
	return b
}

func stringList(obj []byte, key string) []string {
	out := []string{}
	v, typ, _, err := jsonparser.Get(obj, key)
	if err != nil || typ != jsonparser.Array {
		return out
	}
	_, _ = jsonparser.ArrayEach(v, func(item []byte, itemType jsonparser.ValueType, _ int, err error) {
		if err != nil || itemType != jsonparser.String {
			return
		}
		if s, perr := jsonparser.ParseString(item); perr == nil {
			out = append(out, s)
		}
	})
	return out
}

// objectEntries returns the raw elements of the list under key, in order.
// Elements that are not objects come back as nil so that builders see every
// field as absent. present is false when the key is missing or null.
func objectEntries(doc []byte, key string) (entries [][]byte, present bool, err error) {
	v, typ, _, gerr := jsonparser.Get(doc, key)
	if gerr != nil || typ == jsonparser.Null || typ == jsonparser.NotExist {
		return nil, false, nil
	}
	if typ != jsonparser.Array {
		return nil, true, errNotList(key, typ)
	}
	_, aerr := jsonparser.ArrayEach(v, func(item []byte, itemType jsonparser.ValueType, _ int, err error) {
		if err != nil || itemType != jsonparser.Object {
			entries = append(entries, nil)
			return
		}
		entries = append(entries, item)
	})
	if aerr != nil {
		return nil, true, errMalformedList(key, aerr)
	}
	return entries, true, nil
}
