package rng

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestSeeded_Intn(t *testing.T) {
	a := assert.New(t)

	s1 := NewSeeded(42)
	s2 := NewSeeded(42)
	other := NewSeeded(43)

	same := true
	for i := 0; i < 100; i++ {
		v1 := s1.Intn(12)
		a.GreaterOrEqual(v1, 0)
		a.Less(v1, 12)

		a.Equal(v1, s2.Intn(12))
		if v1 != other.Intn(12) {
			same = false
		}
	}

	a.False(same)
}
