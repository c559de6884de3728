package gameid

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()
	id := Generate()
	require.Len(t, id, 26)
	require.NoError(t, Validate(id))
}

func TestGenerateUnique(t *testing.T) {
	t.Parallel()
	ids := make(map[string]bool)
	for range 100 {
		id := Generate()
		require.False(t, ids[id], "duplicate ID generated: %s", id)
		ids[id] = true
	}
}

func TestGenerateTimeSorted(t *testing.T) {
	var ids []string
	for range 5 {
		ids = append(ids, Generate())
		time.Sleep(2 * time.Millisecond)
	}
	for i := 1; i < len(ids); i++ {
		assert.Negative(t, strings.Compare(ids[i-1], ids[i]), "IDs not sorted: %s >= %s", ids[i-1], ids[i])
	}
}

func TestGeneratorWithReader(t *testing.T) {
	t.Parallel()
	g := NewGenerator(strings.NewReader(strings.Repeat("x", 64)))
	require.NoError(t, Validate(g.Generate()))
}

func TestEncodeBase32(t *testing.T) {
	t.Parallel()
	assert.Equal(t, strings.Repeat("0", 26), encodeBase32(uuid.UUID{}))

	var full uuid.UUID
	for i := range full {
		full[i] = 0xff
	}
	assert.Equal(t, "7"+strings.Repeat("z", 25), encodeBase32(full))
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "valid ID", id: "01h5n0et5q6mt3v7ms1234abcd"},
		{name: "too short", id: "01h5n0et5q6mt3v7ms123", wantErr: true},
		{name: "first char too high", id: "81h5n0et5q6mt3v7ms1234abcd", wantErr: true},
		{name: "invalid character", id: "01h5n0et5q6mt3v7ms1234abci", wantErr: true},
		{name: "uppercase not allowed", id: "01H5N0ET5Q6MT3V7MS1234ABCD", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
