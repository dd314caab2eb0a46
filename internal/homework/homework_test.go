package homework

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return resp
}

func TestValidateEmptyList(t *testing.T) {
	t.Parallel()
	recs, err := Validate(decode(t, `{"homeworks": [], "current_date": 1700000000}`))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestValidateMissingData(t *testing.T) {
	t.Parallel()
	for _, body := range []string{`{}`, `{"homeworks": null}`, `{"current_date": 1}`} {
		_, err := Validate(decode(t, body))
		assert.ErrorIs(t, err, ErrMissingHomeworks, body)
		assert.ErrorIs(t, err, ErrValidation, body)
	}
	_, err := Validate(nil)
	assert.ErrorIs(t, err, ErrMissingHomeworks)
}

func TestValidateNotAList(t *testing.T) {
	t.Parallel()
	for _, body := range []string{
		`{"homeworks": 5}`,
		`{"homeworks": {"homework_name": "x", "status": "approved"}}`,
		`{"homeworks": "approved"}`,
		`{"homeworks": true}`,
	} {
		_, err := Validate(decode(t, body))
		assert.ErrorIs(t, err, ErrHomeworksNotList, body)
		assert.ErrorIs(t, err, ErrValidation, body)
	}
}

func TestValidateMalformedElement(t *testing.T) {
	t.Parallel()
	_, err := Validate(decode(t, `{"homeworks": [{"homework_name": "a", "status": "approved"}, 7]}`))
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = Validate(decode(t, `{"homeworks": [{"homework_name": 1}]}`))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestValidateKeepsOrder(t *testing.T) {
	t.Parallel()
	recs, err := Validate(decode(t, `{"homeworks": [
		{"id": 1, "homework_name": "task2", "status": "reviewing", "reviewer_comment": ""},
		{"id": 2, "homework_name": "task1", "status": "approved"}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{Name: "task2", Status: StatusReviewing},
		{Name: "task1", Status: StatusApproved},
	}, recs)
}

func TestValidateIsIdempotent(t *testing.T) {
	t.Parallel()
	first, err := Validate(decode(t, `{"homeworks": [{"homework_name": "task1", "status": "rejected"}]}`))
	require.NoError(t, err)

	again, err := Validate(NewResponse(first))
	require.NoError(t, err)
	assert.Equal(t, first, again)

	empty, err := Validate(NewResponse(nil))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCurrentDate(t *testing.T) {
	t.Parallel()
	ts, ok := decode(t, `{"homeworks": [], "current_date": 1700000000}`).CurrentDate()
	assert.True(t, ok)
	assert.EqualValues(t, 1700000000, ts)

	_, ok = decode(t, `{"homeworks": []}`).CurrentDate()
	assert.False(t, ok)
	_, ok = decode(t, `{"current_date": "yesterday"}`).CurrentDate()
	assert.False(t, ok)
}

func TestRenderKnownStatuses(t *testing.T) {
	t.Parallel()
	tests := []struct {
		status Status
		want   string
	}{
		{StatusApproved, `Changed review status for "task1". Работа проверена: ревьюеру всё понравилось. Ура!`},
		{StatusReviewing, `Changed review status for "task1". Работа взята на проверку ревьюером.`},
		{StatusRejected, `Changed review status for "task1". Работа проверена: у ревьюера есть замечания.`},
	}
	for _, tt := range tests {
		got, err := Render(Record{Name: "task1", Status: tt.status})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.True(t, tt.status.Known())
	}
}

func TestRenderUnknownStatus(t *testing.T) {
	t.Parallel()
	_, err := Render(Record{Name: "task1", Status: "lost"})
	require.ErrorIs(t, err, ErrUnknownStatus)

	var use *UnknownStatusError
	require.True(t, errors.As(err, &use))
	assert.Equal(t, Status("lost"), use.Status)
	assert.False(t, Status("lost").Known())
}

func TestRenderMissingFields(t *testing.T) {
	t.Parallel()
	_, err := Render(Record{Status: StatusApproved})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = Render(Record{Name: "task1"})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}
