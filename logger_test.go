package arrayseq

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// records decodes one JSON log record per line.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_Grow(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := New(WithLogger(logger))
	require.NoError(t, s.Append(floats(t, 2, 3, 0)))

	recs := records(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "backing store reallocated", recs[0]["msg"])
	assert.Equal(t, "(3,)", recs[0]["common_shape"])
	assert.Equal(t, "float64", recs[0]["dtype"])
	assert.EqualValues(t, 0, recs[0]["from_rows"])
	assert.EqualValues(t, 2, recs[0]["to_rows"])
}

func TestLogger_SaveLoad(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, nil))

	s := mustSeq(t, floats(t, 1, 1, 0))
	var archive bytes.Buffer
	require.NoError(t, s.save(t.Context(), &archive, "mem", applySaveOptions(nil)))

	_, err := load(t.Context(), bytes.NewReader(archive.Bytes()[:5]), "mem", applyOptions([]Option{WithLogger(logger)}))
	require.Error(t, err)

	recs := records(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "ERROR", recs[0]["level"])
	assert.Equal(t, "load failed", recs[0]["msg"])
	assert.Equal(t, "mem", recs[0]["source"])
}

func TestLogger_Flush(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	arrays := []Array{floats(t, 1, 2, 0), floats(t, 1, 2, 0)}
	_, err := FromIterator(SliceIterator(arrays), WithLogger(logger), WithBufferSize(16))
	require.NoError(t, err)

	flushes := 0
	for _, r := range records(t, &buf) {
		if r["msg"] == "buffered batch flushed" {
			flushes++
		}
	}
	assert.Equal(t, 2, flushes)
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(t.Context(), slog.LevelError))
	assert.NotPanics(t, func() { l.LogSave(t.Context(), "x", 1, nil) })
}
