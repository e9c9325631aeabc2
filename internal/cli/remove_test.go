package cli

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRemovePages(t *testing.T, e *env) {
	t.Helper()
	seedVisits(t, e,
		[2]string{"http://removeTestUrl1", "test1"},
		[2]string{"http://removeTestUrl2", "test2"},
		[2]string{"http://removeTestUrl3", "test3"},
	)
}

func runRemove(t *testing.T, e *env, cmd *RemoveCommand, args ...string) string {
	t.Helper()
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithEnv(e, args)
	})
	require.NoError(t, err)
	return output
}

func TestRemoveCommand(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		removed   string
		remaining []string
	}{
		{"negative index", -1, "", []string{"http://removeTestUrl1", "http://removeTestUrl2", "http://removeTestUrl3"}},
		{"past the end", 4, "", []string{"http://removeTestUrl1", "http://removeTestUrl2", "http://removeTestUrl3"}},
		{"one past last", 3, "", []string{"http://removeTestUrl1", "http://removeTestUrl2", "http://removeTestUrl3"}},
		{"first", 0, "http://removeTestUrl1", []string{"http://removeTestUrl2", "http://removeTestUrl3"}},
		{"middle", 1, "http://removeTestUrl2", []string{"http://removeTestUrl1", "http://removeTestUrl3"}},
		{"last", 2, "http://removeTestUrl3", []string{"http://removeTestUrl1", "http://removeTestUrl2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEnv(t)
			seedRemovePages(t, e)

			output := runRemove(t, e, &RemoveCommand{Index: tt.index, globals: &GlobalFlags{}}, "removeTestUrl")
			if tt.removed == "" {
				assert.Contains(t, output, "is out of range (3 results). Nothing removed.")
			} else {
				assert.Contains(t, output, "Removed ["+strconv.Itoa(tt.index)+"] "+tt.removed)
				assert.Contains(t, output, "2 results left")
			}

			// A fresh search sees the store, not the projection.
			out := runSearch(t, e, &SearchCommand{globals: &GlobalFlags{JSON: true}}, "removeTestUrl")
			var got searchJSON
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			var urls []string
			for _, r := range got.Results {
				urls = append(urls, r.URL)
			}
			assert.Equal(t, tt.remaining, urls)
		})
	}
}

func TestRemoveCommand_EmptyTermRemovesFromAll(t *testing.T) {
	e := testEnv(t)
	seedRanked(t, e)

	output := runRemove(t, e, &RemoveCommand{Index: 0, globals: &GlobalFlags{}})
	assert.Equal(t, "Removed [0] http://www.testurl.blah/\n2 results left\n", output)

	entry, err := e.store.Get(t.Context(), "http://www.testurl.blah/")
	assert.Error(t, err)
	assert.Nil(t, entry)
}

func TestRemoveCommand_LastResultSingular(t *testing.T) {
	e := testEnv(t)
	seedVisits(t, e, [2]string{"https://a.example/", "A"}, [2]string{"https://b.example/", "B"})

	output := runRemove(t, e, &RemoveCommand{Index: 1, globals: &GlobalFlags{}})
	assert.Contains(t, output, "1 result left")
}

func TestRemoveCommand_JSON(t *testing.T) {
	e := testEnv(t)
	seedRemovePages(t, e)

	output := runRemove(t, e, &RemoveCommand{Index: 1, globals: &GlobalFlags{JSON: true}}, "removeTestUrl")
	var got removeJSON
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, removeJSON{Removed: true, Index: 1, URL: "http://removeTestUrl2", Remaining: 2}, got)

	output = runRemove(t, e, &RemoveCommand{Index: 9, globals: &GlobalFlags{JSON: true}}, "removeTestUrl")
	got = removeJSON{}
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, removeJSON{Removed: false, Index: 9, Remaining: 2}, got)
}
