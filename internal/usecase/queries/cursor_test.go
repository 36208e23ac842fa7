//go:build unit

package queries

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterCursorRoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 123456000, time.UTC)
	id := uuid.New()

	encoded := EncodeAfterCursor(ts, id)
	gotTime, gotID, err := DecodeAfterCursor(encoded)
	require.NoError(t, err)

	assert.True(t, ts.Equal(gotTime))
	assert.Equal(t, id, gotID)
}

func TestDecodeAfterCursorErrors(t *testing.T) {
	cases := []struct {
		name   string
		cursor string
	}{
		{name: "empty", cursor: ""},
		{name: "not base64", cursor: "!!!"},
		{name: "unknown version", cursor: base64.URLEncoding.EncodeToString([]byte("v2:123-" + uuid.NewString()))},
		{name: "missing separator", cursor: base64.URLEncoding.EncodeToString([]byte("v1:123456"))},
		{name: "bad timestamp", cursor: base64.URLEncoding.EncodeToString([]byte("v1:abc-" + uuid.NewString()))},
		{name: "bad uuid", cursor: base64.URLEncoding.EncodeToString([]byte("v1:123-not-a-uuid"))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeAfterCursor(tc.cursor)
			assert.Error(t, err)
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, clampLimit(0))
	assert.Equal(t, 50, clampLimit(-5))
	assert.Equal(t, 1, clampLimit(1))
	assert.Equal(t, MaxListLimit, clampLimit(MaxListLimit))
	assert.Equal(t, MaxListLimit, clampLimit(MaxListLimit+1))
}
