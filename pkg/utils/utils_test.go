package utils

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "priya.sharma@example.com", NormalizeEmail("  Priya.Sharma@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestValidatePhoneNumber(t *testing.T) {
	assert.NoError(t, ValidatePhoneNumber("9876543210"))
	assert.ErrorIs(t, ValidatePhoneNumber("98765"), ErrInvalidPhoneNumberFormat)
	assert.ErrorIs(t, ValidatePhoneNumber("98765432ab"), ErrInvalidPhoneNumberFormat)
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	for _, in := range []string{"2024-03-05", "2024/3/5", "2024-3-05"} {
		got, err := ParseDate(in, loc)
		require.NoError(t, err, in)
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, loc), got)
	}
	_, err := ParseDate("05-03-2024", loc)
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
	_, err = ParseDate("", loc)
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestParseClock(t *testing.T) {
	d, err := ParseClock("10:15")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Hour+15*time.Minute, d)

	d, err = ParseClock("09:00:30")
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour+30*time.Second, d)

	_, err = ParseClock("25:00")
	assert.ErrorIs(t, err, ErrInvalidClockFormat)
}

func TestParseUintList(t *testing.T) {
	assert.Equal(t, []uint{3, 7, 9}, ParseUintList("3, 7,x,9,7,0"))
	assert.Nil(t, ParseUintList(""))
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators(), "later calls report the first outcome")
	assert.NotNil(t, Translator)
}

func TestSetupValidatorCustomTags(t *testing.T) {
	v := validator.New()
	trans, err := setupValidator(v, customTags)
	require.NoError(t, err)

	type payload struct {
		Day   string `json:"day" validate:"ymd"`
		Start string `json:"start" validate:"hhmm"`
	}
	require.NoError(t, v.Struct(payload{Day: "2025-03-10", Start: "09:30"}))

	err = v.Struct(payload{Day: "10/03/2025", Start: "9.30"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, "day must be a date in YYYY-MM-DD format", verrs[0].Translate(trans))
	assert.Equal(t, "start must be a time in HH:MM or HH:MM:SS format", verrs[1].Translate(trans))
}

func TestSetupValidatorReportsBadTag(t *testing.T) {
	_, err := setupValidator(validator.New(), []customTag{{tag: "", fn: validateYMD, text: "{0} is bad"}})
	assert.ErrorContains(t, err, `register "" validator`)
}
