package simpleexcel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runSummary struct {
	Total        int            `excel:"total"`
	Distribution map[string]int `excel:"type"`
	Notes        []string       `excel:"-"`
	Label        string
	hidden       string
}

func TestConvertToDynamicData(t *testing.T) {
	testCases := map[string]struct {
		input  interface{}
		output interface{}
	}{
		"struct with map": {
			input: runSummary{Total: 20, Distribution: map[string]int{"point": 3, "ranking": 4}, Label: "run", Notes: []string{"x"}},
			output: map[string]interface{}{
				"total":        20,
				"type_point":   3,
				"type_ranking": 4,
				"Label":        "run",
			},
		},
		"pointer to struct with nil map": {
			input:  &runSummary{Total: 1},
			output: map[string]interface{}{"total": 1, "Label": ""},
		},
		"slice of structs": {
			input: []runSummary{{Total: 1}, {Total: 2, Label: "b"}},
			output: []map[string]interface{}{
				{"total": 1, "Label": ""},
				{"total": 2, "Label": "b"},
			},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := ConvertToDynamicData(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.output, got)
		})
	}
}

func TestConvertToDynamicData_Errors(t *testing.T) {
	_, err := ConvertToDynamicData(42)
	assert.Error(t, err)

	_, err = ConvertToDynamicData([]int{1})
	assert.Error(t, err)
}
