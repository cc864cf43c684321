package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]string{"id": "p1"}, nil))

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Error)
	assert.Equal(t, map[string]interface{}{"id": "p1"}, resp.Data)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil, errors.New("boom")))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "boom", resp.Error)
}

func TestTableWriter(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTableWriterTo(&buf)
	tw.WriteHeader("ID", "NAME")
	tw.WriteRow("p1", "Website")
	tw.WriteRow("p22", "API")
	require.NoError(t, tw.Flush())

	assert.Equal(t, "ID   NAME\np1   Website\np22  API\n", buf.String())
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 3, 9, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-09", FormatDate(&d))
	assert.Equal(t, "-", FormatDate(nil))
	assert.Equal(t, "-", FormatDate(&time.Time{}))
}
