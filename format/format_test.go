package format

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpclog/rpclog/pipeline"
)

func TestJSONFormatter(t *testing.T) {
	f := JSON()
	out := f("user.create", "created", pipeline.Fields{"user_id": "u-1"})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "user.create", decoded["scope"])
	assert.Equal(t, "created", decoded["message"])
	assert.Equal(t, "u-1", decoded["user_id"])
	assert.NotEmpty(t, decoded["time"])
}

func TestJSONFormatterNoFields(t *testing.T) {
	out := JSON()("auth", "denied", nil)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "auth", decoded["scope"])
	assert.Equal(t, "denied", decoded["message"])
}

func TestKeyValueFormatter(t *testing.T) {
	f := KeyValue()
	out := f("billing", "charged", pipeline.Fields{"b": 2, "a": 1})

	assert.Equal(t, `scope=billing msg="charged" a=1 b=2`, out)
}

func TestKeyValueFormatterStableOrder(t *testing.T) {
	f := KeyValue()
	fields := pipeline.Fields{"z": 1, "m": 2, "a": 3}

	first := f("s", "m", fields)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, f("s", "m", fields))
	}
}

func TestTemplateFormatter(t *testing.T) {
	f, err := Template(`{{ToUpper .Scope}}: {{.Message}}`)
	require.NoError(t, err)

	assert.Equal(t, "USER.CREATE: done", f("user.create", "done", nil))
}

func TestTemplateFormatterFields(t *testing.T) {
	f, err := Template(`{{.Message}} user={{.Fields.user_id}}`)
	require.NoError(t, err)

	out := f("s", "created", pipeline.Fields{"user_id": "u-9"})
	assert.Equal(t, "created user=u-9", out)
}

func TestTemplateFormatterInvalid(t *testing.T) {
	_, err := Template(`{{.Message`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid template")
}

func TestTemplateFormatterExecErrorFallsBack(t *testing.T) {
	f, err := Template(`{{call .Missing}}`)
	require.NoError(t, err)

	out := f("scope", "msg", nil)
	assert.Equal(t, "[scope] msg", out)
}
