package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexNumber_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantNum int
		isNum   bool
		isAny   bool
	}{
		{"number", `5`, 5, true, false},
		{"numeric string", `"5"`, 5, true, false},
		{"padded numeric string", `" 12 "`, 12, true, false},
		{"any", `"any"`, 0, false, true},
		{"any mixed case", `"Any"`, 0, false, true},
		{"arbitrary text", `"first"`, 0, false, false},
		{"null", `null`, 0, false, false},
		{"object", `{"x":1}`, 0, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var f FlexNumber
			// Never fails; bad shapes are kept as opaque text.
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &f))
			n, ok := f.Int()
			assert.Equal(t, tc.isNum, ok)
			if ok {
				assert.Equal(t, tc.wantNum, n)
			}
			assert.Equal(t, tc.isAny, f.IsAny())
		})
	}
}

func TestFlexNumber_MarshalRoundTrip(t *testing.T) {
	var f FlexNumber
	require.NoError(t, json.Unmarshal([]byte(`15`), &f))
	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `15`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`"any"`), &f))
	out, err = json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `"any"`, string(out))
}

func TestWeekdays_Unmarshal(t *testing.T) {
	var w Weekdays
	require.NoError(t, json.Unmarshal([]byte(`[1,"4",9,"x"]`), &w))
	// Out-of-range and non-numeric members are dropped.
	assert.Equal(t, []int{1, 4}, w.Days)
	assert.False(t, w.Any)

	var any Weekdays
	require.NoError(t, json.Unmarshal([]byte(`"any"`), &any))
	assert.True(t, any.Any)
}

func TestWeekdays_Contains(t *testing.T) {
	var nilSet *Weekdays
	assert.True(t, nilSet.Contains(3), "nil set fails open")
	assert.True(t, (&Weekdays{Any: true}).Contains(3))
	assert.True(t, (&Weekdays{}).Contains(3), "empty set fails open")
	assert.True(t, (&Weekdays{Days: []int{1, 3}}).Contains(3))
	assert.False(t, (&Weekdays{Days: []int{1, 3}}).Contains(5))
}

func TestTaskInstance_Identity(t *testing.T) {
	task := TaskInstance{TaskID: "t1"}
	assert.Equal(t, "t1", task.KeyID())
	task.Normalize()
	assert.Equal(t, "t1", task.ID)

	both := TaskInstance{ID: "legacy", TaskID: "canonical"}
	assert.Equal(t, "canonical", both.KeyID(), "taskId wins over id")
	assert.True(t, both.Matches("canonical"))
	assert.False(t, both.Matches("legacy"))
}

func TestTaskInstance_IsDone(t *testing.T) {
	assert.False(t, TaskInstance{Status: StatusPending}.IsDone())
	assert.True(t, TaskInstance{Status: StatusDone}.IsDone())
	// A surviving timestamp alone counts as done.
	assert.True(t, TaskInstance{CompletedAt: 123}.IsDone())
}

func TestTaskInstance_ClearRuntime(t *testing.T) {
	assigned := "Alice"
	task := TaskInstance{
		ID: "t1", TaskID: "t1", Title: "x",
		Status: StatusDone, AssignedTo: &assigned,
		CompletedAt: 123, CompletedBy: "Alice",
		Selected: true, SelectedBy: "Alice", SelectedAt: 456,
	}
	task.ClearRuntime()

	assert.Equal(t, StatusNone, task.Status)
	assert.Nil(t, task.AssignedTo)
	assert.Zero(t, task.CompletedAt)
	assert.Empty(t, task.CompletedBy)
	assert.False(t, task.Selected)
	assert.True(t, task.Active)
	assert.Equal(t, "x", task.Title, "identity and template fields survive")
}

func TestTaskInstance_AssignedToSerializesExplicitNull(t *testing.T) {
	out, err := json.Marshal(TaskInstance{ID: "t1", TaskID: "t1"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"assignedTo":null`)
}

func TestCatalogEntry_IsInitial(t *testing.T) {
	for _, status := range []string{"", "new", "idle", "catalog", "NEW", " Idle "} {
		assert.True(t, CatalogEntry{Status: status}.IsInitial(), status)
	}
	for _, status := range []string{"active", "pending", "done"} {
		assert.False(t, CatalogEntry{Status: status}.IsInitial(), status)
	}
}

func TestValidateStruct_User(t *testing.T) {
	assert.NoError(t, ValidateStruct(User{Pin: "1234", DisplayName: "Alice"}))
	assert.Error(t, ValidateStruct(User{Pin: "123", DisplayName: "Alice"}), "too short")
	assert.Error(t, ValidateStruct(User{Pin: "1234567", DisplayName: "Alice"}), "too long")
	assert.Error(t, ValidateStruct(User{Pin: "12a4", DisplayName: "Alice"}), "not numeric")
	assert.Error(t, ValidateStruct(User{Pin: "1234"}), "name required")
}
