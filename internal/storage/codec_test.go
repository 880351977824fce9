package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weasel/internal/model"
)

func TestDecodeRunRejectsVersionMismatch(t *testing.T) {
	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion + 1, CodecVersion: CurrentCodecVersion},
		ID:              "run-1",
	}
	data, err := EncodeRun(run)
	require.NoError(t, err)

	_, err = DecodeRun(data)
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestEncodeGenerationsStampsVersion(t *testing.T) {
	data, err := EncodeGenerations([]model.GenerationRecord{{Generation: 1, Text: "CAT", Score: 3}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"schema_version":1`)

	generations, err := DecodeGenerations(data)
	require.NoError(t, err)
	require.Len(t, generations, 1)
	assert.Equal(t, "CAT", generations[0].Text)

	_, err = DecodeGenerations([]byte(`{"generations":[]}`))
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestDecodeRunRejectsGarbage(t *testing.T) {
	_, err := DecodeRun([]byte("not json"))
	assert.Error(t, err)
}
