package formschema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formfield.app/pkg/validation"
)

func TestParseValue(t *testing.T) {
	cases := []struct {
		raw  string
		want Value
	}{
		{`null`, Empty()},
		{``, Empty()},
		{`"hello"`, Text("hello")},
		{`42`, Number(42)},
		{`-7`, Number(-7)},
		{`42.5`, Currency(42.5)},
		{`1e2`, Currency(100)},
		{`[]`, ChoiceMulti()},
		{`[0, 2]`, ChoiceMulti(0, 2)},
	}
	for _, tc := range cases {
		got, err := ParseValue([]byte(tc.raw))
		require.NoError(t, err, tc.raw)
		assert.True(t, tc.want.Equal(got), "%q: got %s", tc.raw, got)
	}
}

func TestParseValue_Rejects(t *testing.T) {
	for _, raw := range []string{`true`, `{"a":1}`, `[1.5]`, `["x"]`, `[[1]]`} {
		_, err := ParseValue([]byte(raw))
		assert.ErrorIs(t, err, ErrInvalidValue, raw)
	}
}

func TestValue_MarshalKeepsShape(t *testing.T) {
	for _, v := range []Value{Empty(), Text("a\"b"), Number(3), Currency(3), Currency(0.25), ChoiceMulti(), ChoiceMulti(1, 2)} {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		back, err := ParseValue(b)
		require.NoError(t, err)
		assert.Equal(t, v.Kind(), back.Kind(), string(b))
		assert.True(t, v.Equal(back), string(b))
	}
}

func TestValue_IsBlank(t *testing.T) {
	assert.True(t, Empty().IsBlank())
	assert.True(t, ChoiceMulti().IsBlank())
	assert.False(t, Text("").IsBlank())
	assert.False(t, Number(0).IsBlank())
}

func TestDecodeValues(t *testing.T) {
	errs := validation.New()
	got := DecodeValues(map[string]json.RawMessage{
		"1": json.RawMessage(`"x"`),
		"2": json.RawMessage(`true`),
		"3": json.RawMessage(`null`),
	}, errs)
	assert.Len(t, got, 2)
	assert.True(t, errs.Has("2"))
	assert.True(t, got["3"].IsNull())
}
