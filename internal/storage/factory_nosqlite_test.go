//go:build !sqlite

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStoreSQLiteUnavailable(t *testing.T) {
	_, err := NewStore("sqlite", "weasel.db")
	assert.ErrorIs(t, err, ErrSQLiteUnavailable)
}
