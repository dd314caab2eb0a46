package homework

import "fmt"

// Render returns the chat message announcing rec's current review status.
func Render(rec Record) (string, error) {
	if rec.Name == "" {
		return "", fmt.Errorf("%w: homework_name is missing", ErrMalformedRecord)
	}
	if rec.Status == "" {
		return "", fmt.Errorf("%w: status is missing for %q", ErrMalformedRecord, rec.Name)
	}
	verdict, ok := Verdict(rec.Status)
	if !ok {
		return "", &UnknownStatusError{Name: rec.Name, Status: rec.Status}
	}
	return fmt.Sprintf("Changed review status for \"%s\". %s", rec.Name, verdict), nil
}
