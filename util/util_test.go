package util

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCityCode(t *testing.T) {
	assert.Equal(t, "MUM", CityCode("Mumbai"))
	assert.Equal(t, "NEW", CityCode(" new delhi "))
	assert.Equal(t, "GOX", CityCode("Go"))
	assert.Equal(t, "XXX", CityCode(""))
	assert.Equal(t, "BB-PUN-", OrganizationCodePrefix("BB", "pune"))
	assert.Equal(t, "BB-PUN-007", OrganizationCode("BB-PUN-", 7))
	assert.Equal(t, "BB-PUN-1234", OrganizationCode("BB-PUN-", 1234))
}

func TestIsValidKey(t *testing.T) {
	assert.True(t, IsValidKey("12345"))
	assert.True(t, IsValidKey("abc-DEF_1"))
	assert.False(t, IsValidKey(""))
	assert.False(t, IsValidKey("bad/key"))
	assert.False(t, IsValidKey("has space"))
}

func TestParsePageRequest(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := ParsePageRequest("", "", DefaultOrgPageSize, 0)
		require.NoError(t, err)
		assert.Equal(t, PageRequest{Page: 1, Limit: 20}, p)
		assert.Equal(t, 0, p.Offset())
	})

	t.Run("offset", func(t *testing.T) {
		p, err := ParsePageRequest("3", "10", DefaultOrgPageSize, 0)
		require.NoError(t, err)
		assert.Equal(t, 20, p.Offset())
	})

	t.Run("rejects non-positive and non-numeric values", func(t *testing.T) {
		for _, raw := range []string{"0", "-1", "abc", "1.5"} {
			_, err := ParsePageRequest(raw, "", DefaultOrgPageSize, 0)
			require.Error(t, err, raw)
			assert.Equal(t, KindValidation, KindOf(err))
		}
		_, err := ParsePageRequest("1", "0", DefaultOrgPageSize, 0)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("rejects pages whose offset overflows", func(t *testing.T) {
		_, err := ParsePageRequest("4611686018427387905", "3", DefaultOrgPageSize, 0)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))

		p, err := ParsePageRequest(strconv.Itoa(MaxOffset/10+1), "10", DefaultOrgPageSize, 0)
		require.NoError(t, err)
		assert.Equal(t, MaxOffset/10*10, p.Offset())
	})

	t.Run("max limit clamps", func(t *testing.T) {
		p, err := ParsePageRequest("1", "500", DefaultAuditPageSize, 100)
		require.NoError(t, err)
		assert.Equal(t, 100, p.Limit)

		p, err = ParsePageRequest("1", "500", DefaultAuditPageSize, 0)
		require.NoError(t, err)
		assert.Equal(t, 500, p.Limit)
	})
}

func TestParseTimeRange(t *testing.T) {
	r, err := ParseTimeRange("", "")
	require.NoError(t, err)
	assert.True(t, r.Empty())

	r, err = ParseTimeRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.NotNil(t, r.From)
	require.NotNil(t, r.To)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *r.To)
	assert.True(t, r.Contains(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)))

	r, err = ParseTimeRange("2024-01-01T10:00:00Z", "")
	require.NoError(t, err)
	assert.Nil(t, r.To)
	assert.True(t, r.Contains(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))

	_, err = ParseTimeRange("yesterday", "")
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = ParseTimeRange("2024-02-01", "2024-01-01")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestNextUpdateTime(t *testing.T) {
	prev := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, prev.Add(time.Millisecond), NextUpdateTime(prev, prev))
	assert.Equal(t, prev.Add(time.Millisecond), NextUpdateTime(prev.Add(-time.Hour), prev))

	later := prev.Add(2*time.Second + 500*time.Microsecond)
	assert.Equal(t, prev.Add(2*time.Second), NextUpdateTime(later, prev))
}

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalError("failed to load blood banks", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")

	wrapped := errors.Join(errors.New("outer"), NewNotFoundError("blood bank not found"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitList(" a:9092, ,b:9092 "))
	assert.Nil(t, SplitList(""))
}
