package export

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-harvest/pkg/domain"
)

func TestToJSON_KeepsGeorgianTextAndStepOrder(t *testing.T) {
	recipes := []domain.Recipe{{
		Title:            "ხინკალი <ცხელი>",
		Ingredients:      []string{"200 გრამი ხორცი"},
		PreparationSteps: domain.Steps{{Label: "2", Text: "ბ"}, {Label: "1", Text: "ა"}},
	}}

	out, err := ToJSON(recipes)
	require.NoError(t, err)

	assert.Contains(t, out, `"title": "ხინკალი <ცხელი>"`)
	assert.Contains(t, out, "\n    {")
	assert.Less(t, strings.Index(out, `"2": "ბ"`), strings.Index(out, `"1": "ა"`))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "ხინკალი <ცხელი>", decoded[0]["title"])
}

func TestToJSON_Empty(t *testing.T) {
	out, err := ToJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestMarshal_FailureIsAnErrorValue(t *testing.T) {
	_, err := marshal(map[string]float64{"nan": math.NaN()})
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "recipes.json")
	require.NoError(t, WriteFile(path, []domain.Recipe{{Title: "ფხალი"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ფხალი")
}
