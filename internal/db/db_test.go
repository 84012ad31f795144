package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_InvalidURL(t *testing.T) {
	db, err := Connect(context.Background(), "not-a-valid-url")
	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to connect to database")
}

func TestClose_NilPoolIsSafe(t *testing.T) {
	db := &DB{}
	assert.NotPanics(t, func() { db.Close() })
}
