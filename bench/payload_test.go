package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakePayload_Deterministic(t *testing.T) {
	a := MakePayload(100)
	b := MakePayload(100)

	require.Len(t, a, 100)
	assert.Equal(t, a, b)
}

func TestMakePayload_Empty(t *testing.T) {
	assert.Empty(t, MakePayload(0))
}

func TestVerifyPayload(t *testing.T) {
	p := MakePayload(64)
	require.NoError(t, VerifyPayload(p, 64))

	assert.Error(t, VerifyPayload(p, 63), "wrong size must fail")

	p[10] ^= 0xff
	assert.Error(t, VerifyPayload(p, 64), "corrupt byte must fail")
}
