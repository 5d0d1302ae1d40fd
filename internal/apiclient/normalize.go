package apiclient

import "github.com/tidwall/gjson"

// UnwrapObject resolves a payload that is either {field: {...}} or the bare
// object. The wrapped form is checked first.
func UnwrapObject(raw []byte, field string) (gjson.Result, bool) {
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return gjson.Result{}, false
	}
	if wrapped := root.Get(field); wrapped.IsObject() {
		return wrapped, true
	}
	return root, true
}

// Truthy treats missing, null, false, 0 and "" as absent.
func Truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}
