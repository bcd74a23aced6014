package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeOfDay(t *testing.T) {
	cases := map[string]string{
		"10:00":    "10:00:00",
		"09:30:00": "09:30:00",
		"16:30":    "16:30:00",
	}
	for in, want := range cases {
		got, ok := TimeOfDay(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "25:00", "10", "10:61", "noon"} {
		_, ok := TimeOfDay(bad)
		assert.False(t, ok, bad)
	}
}

func TestDate(t *testing.T) {
	assert.True(t, Date("2024-06-01"))
	assert.False(t, Date("2024-13-01"))
	assert.False(t, Date("06/01/2024"))
	assert.False(t, Date(""))
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("pat@example.com"))
	assert.False(t, Email("Pat <pat@example.com>"))
	assert.False(t, Email("nope"))
}

func TestChecker(t *testing.T) {
	var c Checker
	assert.NoError(t, c.Err())

	c.Check(true, "ok", "never")
	c.Check(false, "reason", "Reason is required")
	c.Check(false, "reason", "second message ignored")
	c.Check(false, "date", "Valid date is required")

	err := c.Err()
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{
		"reason": "Reason is required",
		"date":   "Valid date is required",
	}, verr.Fields)
	assert.Equal(t, "validation failed: date: Valid date is required; reason: Reason is required", err.Error())
}

type signup struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name" validate:"notblank"`
	Nickname *string `json:"nickname" validate:"omitnil,notblank"`
	Born     *string `json:"born" validate:"omitempty,datetime=2006-01-02"`
	At       string  `json:"at" validate:"timeofday"`
	Seats    int     `json:"seats" validate:"gte=0"`
}

func TestCheckerStruct(t *testing.T) {
	msgs := Messages{
		"email": "Valid email is required",
		"name":  "Name is required",
	}

	var c Checker
	c.Struct(signup{Email: "pat@example.com", Name: "Pat", At: "09:30"}, msgs)
	assert.NoError(t, c.Err())

	blank, empty := "  ", ""
	c = Checker{}
	c.Struct(&signup{Email: "nope", Name: " ", Nickname: &blank, Born: &empty, At: "noon", Seats: -1}, msgs)

	var verr *Error
	require.ErrorAs(t, c.Err(), &verr)
	assert.Equal(t, map[string]string{
		"email":    "Valid email is required",
		"name":     "Name is required",
		"nickname": "Invalid nickname",
		"at":       "Invalid at",
		"seats":    "Invalid seats",
	}, verr.Fields)
}

func TestCheckerStruct_KeepsEarlierMessage(t *testing.T) {
	var c Checker
	c.Check(false, "name", "taken")
	c.Struct(signup{Email: "pat@example.com", At: "10:00"}, Messages{"name": "Name is required"})

	var verr *Error
	require.ErrorAs(t, c.Err(), &verr)
	assert.Equal(t, "taken", verr.Fields["name"])
}
