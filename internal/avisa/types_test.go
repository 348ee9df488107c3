package avisa

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshal(t *testing.T) {
	testcases := []struct {
		desc    string
		input   string
		expect  ID
		wantErr bool
	}{
		{desc: "string", input: `"d1"`, expect: "d1"},
		{desc: "integer", input: `42`, expect: "42"},
		{desc: "object", input: `{}`, wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tc.input), &id)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, id)
		})
	}
}

func TestTestRecordFromNumericIDs(t *testing.T) {
	var record TestRecord
	err := json.Unmarshal([]byte(`{"test_id": 7, "device_id": 12, "deployment_id": "abc"}`), &record)
	require.NoError(t, err)

	assert.Equal(t, TestRecord{TestID: "7", DeviceID: "12", DeploymentID: "abc"}, record)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "NOT STARTED", StatusNotStarted.String())
	assert.Equal(t, "IN PROGRESS", StatusInProgress.String())
	assert.Equal(t, "COMPLETED", StatusCompleted.String())
	assert.Equal(t, "STATUS(5)", TestStatus(5).String())
}

func TestStatusUnmarshal(t *testing.T) {
	testcases := []struct {
		desc    string
		input   string
		expect  TestStatus
		wantErr bool
	}{
		{desc: "integer", input: `3`, expect: StatusCompleted},
		{desc: "integral float", input: `3.0`, expect: StatusCompleted},
		{desc: "exponent", input: `2e0`, expect: StatusInProgress},
		{desc: "unexpected value", input: `7`, expect: 7},
		{desc: "fraction", input: `2.5`, wantErr: true},
		{desc: "not a number", input: `"done"`, wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			var status TestStatus
			err := json.Unmarshal([]byte(tc.input), &status)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, status)
		})
	}
}
