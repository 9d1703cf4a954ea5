package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	token, err := Generate(8)
	assert.NoError(t, err)
	assert.Equal(t, 8, len(token))

	token2, err := Generate(8)
	assert.NoError(t, err)
	assert.NotEqual(t, token, token2)

	long, err := Generate(40)
	assert.NoError(t, err)
	assert.Equal(t, 40, len(long))
}

func TestJoinCode(t *testing.T) {
	a := assert.New(t)

	code := JoinCode()
	a.Equal(JoinCodeLength, len(code))
	for _, c := range code {
		a.True(strings.ContainsRune(joinCodeAlphabet, c))
	}

	a.NotEqual(code, JoinCode())
}
