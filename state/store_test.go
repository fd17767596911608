package state

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "state.json"))
}

func TestRoundTrip(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Set("cooldown:continuous-work-alert", int64(1755072000000)))
	require.NoError(t, s.Set("daily:daily-summary:2026-08-24", int64(1755043500000)))

	// Reopen to force a disk read
	s2 := Open(s.Path())

	v, ok, err := s2.Get("cooldown:continuous-work-alert")
	require.NoError(t, err)
	require.True(t, ok)
	n, isNum := v.(json.Number)
	require.True(t, isNum, "numbers should decode as json.Number, got %T", v)
	assert.Equal(t, "1755072000000", n.String())
}

func TestTimeAccessors(t *testing.T) {
	s := testStore(t)

	stamp := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetTime("cooldown:continuous-work-alert", stamp))

	got, ok, err := s.GetTime("cooldown:continuous-work-alert")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(stamp), "expected %v, got %v", stamp, got)

	// Sub-millisecond precision is dropped by the epoch-ms encoding
	fine := time.Date(2026, 8, 24, 10, 0, 0, 123456789, time.UTC)
	require.NoError(t, s.SetTime("k", fine))
	got, ok, err = s.GetTime("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fine.Truncate(time.Millisecond), got)
}

func TestGetTimeNonNumeric(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Set("k", "not a timestamp"))

	_, ok, err := s.GetTime("k")
	require.NoError(t, err)
	assert.False(t, ok, "non-numeric value should read as absent")
}

func TestGetTimeAbsent(t *testing.T) {
	s := testStore(t)

	_, ok, err := s.GetTime("never-set")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnknownKeysPreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	// Simulate a file written by a newer version with keys we don't know
	initial := `{
  "cooldown:continuous-work-alert": 1755072000000,
  "future:nested": {"a": 1, "b": ["x", "y"]},
  "future:precise": 3.14159265358979
}`
	require.NoError(t, os.WriteFile(path, []byte(initial), 0600))

	s := Open(path)
	require.NoError(t, s.Set("daily:daily-summary:2026-08-24", int64(1)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var data map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&data))

	assert.Contains(t, data, "daily:daily-summary:2026-08-24")
	assert.Contains(t, data, "future:nested")
	assert.Equal(t, json.Number("1755072000000"), data["cooldown:continuous-work-alert"])
	assert.Equal(t, json.Number("3.14159265358979"), data["future:precise"],
		"numeric values must survive rewrite without formatting drift")

	nested, ok := data["future:nested"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("1"), nested["a"])
}

func TestFailOpenMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s := Open(path)

	_, ok, err := s.Get("anything")
	assert.False(t, ok, "malformed state should read as empty")
	assert.Error(t, err, "read error should still be reported")

	// Writing through a malformed file replaces it with valid state
	require.NoError(t, s.Set("k", "v"))
	v, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestMissingFileIsEmpty(t *testing.T) {
	s := testStore(t)

	v, ok, err := s.Get("k")
	require.NoError(t, err, "missing file is not an error")
	assert.False(t, ok)
	assert.Nil(t, v)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestDelete(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Set("a", 1))
	require.NoError(t, s.Set("b", 2))

	require.NoError(t, s.Delete("a"))
	_, ok, err := s.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key succeeds
	require.NoError(t, s.Delete("nope"))

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)
}

func TestKeysSorted(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Set("zebra", 1))
	require.NoError(t, s.Set("alpha", 2))
	require.NoError(t, s.Set("mango", 3))

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mango", "zebra"}, keys)
}

func TestClear(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Set("k", "v"))

	require.NoError(t, s.Clear())

	// The file stays behind holding an empty object, not a deletion
	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))

	all, err := s.All()
	require.NoError(t, err)
	assert.Empty(t, all)

	// Clear before any write is also fine
	fresh := Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, fresh.Clear())
}

func TestDirectoryCreatedLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", "nested")
	s := Open(filepath.Join(dir, "state.json"))

	// No directory until the first write
	_, err := os.Stat(dir)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, s.Set("k", "v"))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}
