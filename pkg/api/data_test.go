package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_JSON_Get(t *testing.T) {
	body := JSON{
		"user": map[string]any{
			"profile": map[string]any{"name": "hikari"},
			"age":     float64(17),
			"active":  true,
		},
	}

	name, err := body.GetString("user.profile.name")
	require.NoError(t, err)
	require.Equal(t, "hikari", name)

	age, err := body.GetInt("user.age")
	require.NoError(t, err)
	require.Equal(t, 17, age)

	active, err := body.GetBool("user.active")
	require.NoError(t, err)
	require.True(t, active)

	_, err = body.Get("user.missing")
	require.Error(t, err)

	_, err = body.Get("user.age.nested")
	require.Error(t, err)
}

func Test_JSON_GetArray(t *testing.T) {
	body := JSON{
		"choices": []any{
			map[string]any{"index": float64(0)},
			map[string]any{"index": float64(1)},
		},
	}

	choices, err := body.GetArray("choices")
	require.NoError(t, err)
	require.Len(t, choices, 2)

	index, err := choices[1].GetInt("index")
	require.NoError(t, err)
	require.Equal(t, 1, index)
}

func Test_Parameter_Encode(t *testing.T) {
	encoded := Parameter{"b": "2", "a": "value with space"}.Encode()
	require.Equal(t, "a=value%20with%20space&b=2", encoded)
}
