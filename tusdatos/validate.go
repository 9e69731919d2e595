package tusdatos

import (
	"fmt"
	"reflect"
)

var objectType = reflect.TypeOf(Object(nil))

// ValidateResponse checks a decoded response for an application-level
// failure. v must be a JSON object; when it carries a "status" other than
// "success" the remote "message" is returned as a KindInvalidResponse error.
func ValidateResponse(v any) error {
	obj, ok := asObject(v)
	if !ok {
		return invalidResponse("response is not a JSON object", nil)
	}

	status, ok := obj["status"]
	if !ok || status == "success" {
		return nil
	}

	msg := "unknown error"
	if m, ok := obj["message"]; ok && m != nil {
		msg = fmt.Sprint(m)
	}
	return invalidResponse(fmt.Sprintf("API error: %s", msg), nil)
}

// rawResponse is implemented by the typed responses that keep the decoded
// object alongside their fields.
type rawResponse interface {
	rawObject() Object
}

// asObject accepts map[string]any, any named type over it such as Report or
// HistoryEntry, and the typed responses through their Raw object.
func asObject(v any) (Object, bool) {
	switch t := v.(type) {
	case Object:
		return t, t != nil
	case rawResponse:
		obj := t.rawObject()
		return obj, obj != nil
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.IsNil() || !rv.Type().ConvertibleTo(objectType) {
		return nil, false
	}
	return rv.Convert(objectType).Interface().(Object), true
}
