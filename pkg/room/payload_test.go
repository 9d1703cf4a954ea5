package room

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdditionalData(t *testing.T) {
	a := assert.New(t)

	var payload PayloadIn
	a.NoError(json.Unmarshal([]byte(`{"action":"rename","additionalData":{"index":3,"name":"Fred"},"context":"ctx-1"}`), &payload))
	a.Equal("rename", payload.Action)
	a.Equal("ctx-1", payload.Context)

	index, ok := payload.AdditionalData.GetInt("index")
	a.True(ok)
	a.Equal(3, index)

	name, ok := payload.AdditionalData.GetString("name")
	a.True(ok)
	a.Equal("Fred", name)

	_, ok = payload.AdditionalData.GetInt("name")
	a.False(ok)

	_, ok = payload.AdditionalData.GetString("index")
	a.False(ok)

	_, ok = payload.AdditionalData.GetInt("missing")
	a.False(ok)

	_, ok = payload.AdditionalData.GetString("missing")
	a.False(ok)
}
