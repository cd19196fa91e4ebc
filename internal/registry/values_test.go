package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeValue(t *testing.T, js string) Value {
	t.Helper()
	var v Value
	require.NoError(t, json.Unmarshal([]byte(js), &v))
	return v
}

func TestValue_Truthy(t *testing.T) {
	tests := []struct {
		js   string
		want bool
	}{
		{`null`, false},
		{`""`, false},
		{`0`, false},
		{`0.0`, false},
		{`false`, false},
		{`[]`, false},
		{`{}`, false},
		{`"x"`, true},
		{`12`, true},
		{`-0.5`, true},
		{`true`, true},
		{`[1]`, true},
		{`{"a":1}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.js, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeValue(t, tt.js).Truthy())
		})
	}
}

func TestValue_Cell(t *testing.T) {
	assert.Equal(t, "школа", decodeValue(t, `"школа"`).Cell())
	assert.Equal(t, int64(9007199254740993), decodeValue(t, `9007199254740993`).Cell())
	assert.Equal(t, 12.75, decodeValue(t, `12.75`).Cell())
	assert.Equal(t, true, decodeValue(t, `true`).Cell())
	assert.Nil(t, decodeValue(t, `null`).Cell())
	assert.Equal(t, `{"a":1}`, decodeValue(t, `{"a":1}`).Cell())
}

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.False(t, v.Truthy())
	assert.Nil(t, v.Cell())
}

func TestNewValue(t *testing.T) {
	assert.Equal(t, int64(7), NewValue(7).Cell())
	assert.Equal(t, int64(7), NewValue(int64(7)).Cell())
	assert.Equal(t, 1.5, NewValue(1.5).Cell())
	assert.Equal(t, "a", NewValue("a").Cell())
	assert.True(t, NewValue(nil).IsNull())
}

func TestValue_MarshalRoundTrip(t *testing.T) {
	v := decodeValue(t, `123456789012345678`)
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `123456789012345678`, string(b))
}
