package quota

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() Policy {
	return Policy{
		Enabled:       true,
		DefaultLimit:  10,
		UserLimits:    map[string]int{"42": 3},
		GroupLimits:   map[string]int{"777": 5},
		ResetInterval: 24 * time.Hour,
	}
}

func recordsPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "usage_records.json")
}

func TestCheckUnlimitedWithoutConfiguredLimit(t *testing.T) {
	l := NewLimiter(testPolicy(), recordsPath(t))
	res := l.Check("9999", "")
	assert.True(t, res.Allowed)
	assert.False(t, res.Limited)
	assert.Equal(t, 0, l.Len())
}

func TestCheckDisabledPolicy(t *testing.T) {
	p := testPolicy()
	p.Enabled = false
	l := NewLimiter(p, recordsPath(t))
	res := l.Check("42", "")
	assert.True(t, res.Allowed)
	assert.False(t, res.Limited)
}

func TestCheckDeniesAboveLimit(t *testing.T) {
	l := NewLimiter(testPolicy(), recordsPath(t))
	for i := 1; i <= 3; i++ {
		res := l.Check("42", "")
		require.True(t, res.Allowed, "draw %d should be permitted", i)
		assert.Equal(t, 3-i, res.Remaining)
	}
	res := l.Check("42", "")
	assert.False(t, res.Allowed)
	assert.Equal(t, 3, res.Limit)
	assert.Equal(t, ScopeUser, res.Scope)
}

func TestUserLimitWinsOverGroupLimit(t *testing.T) {
	l := NewLimiter(testPolicy(), recordsPath(t))
	res := l.Check("42", "777")
	require.True(t, res.Allowed)
	assert.Equal(t, ScopeUser, res.Scope)
	assert.Equal(t, 3, res.Limit)
}

func TestGroupLimitAppliesToUnknownUser(t *testing.T) {
	l := NewLimiter(testPolicy(), recordsPath(t))
	res := l.Check("9999", "777")
	require.True(t, res.Allowed)
	assert.Equal(t, ScopeGroup, res.Scope)
	assert.Equal(t, 5, res.Limit)
	assert.Equal(t, 4, res.Remaining)
}

func TestZeroLimitEntryFallsBackToDefault(t *testing.T) {
	p := testPolicy()
	p.UserLimits["55"] = 0
	l := NewLimiter(p, recordsPath(t))
	res := l.Check("55", "")
	require.True(t, res.Allowed)
	assert.Equal(t, 10, res.Limit)
}

func TestRecordResetsAfterWindow(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	l := NewLimiter(testPolicy(), recordsPath(t), WithNow(clock))

	for i := 0; i < 3; i++ {
		require.True(t, l.Check("42", "").Allowed)
	}
	require.False(t, l.Check("42", "").Allowed)

	// move past the reset window, the counter starts at zero again
	now = now.Add(24*time.Hour + time.Minute)
	res := l.Check("42", "")
	require.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining)
}

func TestResetClearsAllRecords(t *testing.T) {
	path := recordsPath(t)
	l := NewLimiter(testPolicy(), path)
	for i := 0; i < 3; i++ {
		require.True(t, l.Check("42", "").Allowed)
	}
	require.False(t, l.Check("42", "").Allowed)

	l.Reset()
	assert.Equal(t, 0, l.Len())
	res := l.Check("42", "")
	assert.True(t, res.Allowed)

	// the empty map must have been persisted before the new draw
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var records map[string]Record
	require.NoError(t, json.Unmarshal(b, &records))
	assert.Len(t, records, 1)
}

func TestRecordsPersistAcrossRestart(t *testing.T) {
	path := recordsPath(t)
	l := NewLimiter(testPolicy(), path)
	for i := 0; i < 3; i++ {
		require.True(t, l.Check("42", "").Allowed)
	}

	reloaded := NewLimiter(testPolicy(), path)
	res := reloaded.Check("42", "")
	assert.False(t, res.Allowed)
}

func TestGroupRecordKeyUsedWhenGroupPresent(t *testing.T) {
	path := recordsPath(t)
	l := NewLimiter(testPolicy(), path)
	require.True(t, l.Check("42", "777").Allowed)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var records map[string]Record
	require.NoError(t, json.Unmarshal(b, &records))
	assert.Contains(t, records, "group_777")
	assert.NotContains(t, records, "user_42")
}

func TestCorruptRecordFileIsSwallowed(t *testing.T) {
	path := recordsPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	l := NewLimiter(testPolicy(), path)
	assert.True(t, l.Check("42", "").Allowed)
}
