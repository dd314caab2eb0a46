package homework

import "encoding/json"

// Response is a decoded top-level API object. Values stay raw until
// Validate inspects them, so shape errors can be told apart.
type Response map[string]json.RawMessage

// Record is one submission's review metadata.
type Record struct {
	Name   string `json:"homework_name"`
	Status Status `json:"status"`
}

// Key identifies a submission across poll cycles.
func (r Record) Key() string { return r.Name }

// NewResponse builds the response an API would return for records.
func NewResponse(records []Record) Response {
	if records == nil {
		records = []Record{}
	}
	b, _ := json.Marshal(records)
	return Response{"homeworks": b}
}

// CurrentDate returns the server time the API attaches to a response.
func (r Response) CurrentDate() (int64, bool) {
	raw, ok := r["current_date"]
	if !ok {
		return 0, false
	}
	var ts int64
	if err := json.Unmarshal(raw, &ts); err != nil || ts <= 0 {
		return 0, false
	}
	return ts, true
}
