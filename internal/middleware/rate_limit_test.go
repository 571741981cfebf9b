package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketExhausts(t *testing.T) {
	tb := NewTokenBucket(3, 1)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	// 桶空了
	assert.False(t, tb.Allow())
}

func TestTokenBucketCapacityCap(t *testing.T) {
	tb := NewTokenBucket(2, 100)
	tb.Allow()
	tb.Allow()
	assert.False(t, tb.Allow())
}
