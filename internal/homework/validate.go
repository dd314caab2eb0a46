package homework

import (
	"bytes"
	"encoding/json"
	"fmt"
)

var jsonNull = []byte("null")

// Validate checks the response shape and returns its homework records in
// order. An empty list is valid.
//
// A missing or null "homeworks" key (this includes an empty object) is
// ErrMissingHomeworks; a value that is not an array is ErrHomeworksNotList;
// an element that is not an object is ErrMalformedRecord.
func Validate(resp Response) ([]Record, error) {
	raw, ok := resp["homeworks"]
	raw = bytes.TrimSpace(raw)
	if !ok || len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return nil, ErrMissingHomeworks
	}
	if raw[0] != '[' {
		return nil, fmt.Errorf("%w: got %s", ErrHomeworksNotList, kindOf(raw))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHomeworksNotList, err)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, fmt.Errorf("%w: element %d is %s", ErrMalformedRecord, i, kindOf(item))
		}
		var rec Record
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformedRecord, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func kindOf(raw []byte) string {
	if len(raw) == 0 {
		return "empty"
	}
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
