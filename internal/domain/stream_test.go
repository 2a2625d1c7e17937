package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisRequestEvent_HasTimeInput(t *testing.T) {
	tests := []struct {
		name        string
		event       AnalysisRequestEvent
		expected    bool
		description string
	}{
		{
			name: "hour and minute present",
			event: AnalysisRequestEvent{
				RequestID: uuid.New(),
				Hour:      "7",
				Minute:    "30",
				Period:    "PM",
			},
			expected:    true,
			description: "Should return true when both fields are filled",
		},
		{
			name: "only hour present",
			event: AnalysisRequestEvent{
				RequestID: uuid.New(),
				Hour:      "7",
			},
			expected:    true,
			description: "A half-filled time still counts as input so it can be rejected as invalid",
		},
		{
			name: "only minute present",
			event: AnalysisRequestEvent{
				RequestID: uuid.New(),
				Minute:    "15",
			},
			expected:    true,
			description: "Should return true when only minute is filled",
		},
		{
			name: "period alone is not input",
			event: AnalysisRequestEvent{
				RequestID: uuid.New(),
				Period:    "AM",
			},
			expected:    false,
			description: "Period has a default and does not mean the user entered a time",
		},
		{
			name:        "no time fields",
			event:       AnalysisRequestEvent{RequestID: uuid.New()},
			expected:    false,
			description: "Should return false when nothing was entered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.HasTimeInput(), tt.description)
		})
	}
}

func TestAnalysisDoneEvent_OmitsEmptyFields(t *testing.T) {
	event := AnalysisDoneEvent{
		RequestID: uuid.New(),
		Error:     "point outside boundary",
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.NotContains(t, decoded, "result")
	assert.NotContains(t, decoded, "time_summary")
	assert.Equal(t, "point outside boundary", decoded["error"])
}
