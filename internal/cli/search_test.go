package cli

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/histidx/internal/config"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// seedRanked stores three pages whose URL lengths are inverse to their
// creation order, and visits the root page twice.
func seedRanked(t *testing.T, e *env) {
	t.Helper()
	seedVisits(t, e,
		[2]string{"http://www.testurl.blah/thelongesturl/", "The longest url"},
		[2]string{"http://www.testurl.blah/alongerurl/", "A longer url"},
		[2]string{"http://www.testurl.blah/", "A root page"},
		[2]string{"http://www.testurl.blah/", ""},
	)
}

func runSearch(t *testing.T, e *env, cmd *SearchCommand, args ...string) string {
	t.Helper()
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithEnv(e, args)
	})
	require.NoError(t, err)
	return output
}

func TestSearchCommand_RankedGolden(t *testing.T) {
	e := testEnv(t)
	seedRanked(t, e)

	output := runSearch(t, e, &SearchCommand{globals: &GlobalFlags{}}, "test")
	newGoldie(t).Assert(t, "search_ranked", []byte(output))
}

func TestSearchCommand_JSONGolden(t *testing.T) {
	e := testEnv(t)
	seedRanked(t, e)

	output := runSearch(t, e, &SearchCommand{globals: &GlobalFlags{JSON: true}}, "longer")
	newGoldie(t).Assert(t, "search_json", []byte(output))
}

func TestSearchCommand_NoResults(t *testing.T) {
	e := testEnv(t)

	output := runSearch(t, e, &SearchCommand{globals: &GlobalFlags{}}, "anything")
	assert.Equal(t, "No results found for \"anything\"\n", output)

	output = runSearch(t, e, &SearchCommand{globals: &GlobalFlags{}})
	assert.Equal(t, "No results found\n", output)
}

func TestSearchCommand_MultiWordTerm(t *testing.T) {
	e := testEnv(t)
	seedRanked(t, e)

	output := runSearch(t, e, &SearchCommand{globals: &GlobalFlags{}}, "longer", "url")
	assert.Contains(t, output, `Found 1 result for "longer url"`)
	assert.Contains(t, output, "[0] A longer url · www.testurl.blah")
}

func TestSearchCommand_Limit(t *testing.T) {
	e := testEnv(t)
	seedRanked(t, e)

	output := runSearch(t, e, &SearchCommand{Limit: 2, globals: &GlobalFlags{JSON: true}}, "testurl")

	var got searchJSON
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	require.Equal(t, 2, got.Count)
	assert.Equal(t, "http://www.testurl.blah/", got.Results[0].URL)
	assert.Equal(t, 2, got.Results[0].VisitCount)
	assert.Equal(t, "http://www.testurl.blah/alongerurl/", got.Results[1].URL)
}

func TestSearchCommand_MetacharactersAreLiteral(t *testing.T) {
	e := testEnv(t)
	seedRanked(t, e)

	for _, term := range []string{"';\";", "%", "_", "\\"} {
		output := runSearch(t, e, &SearchCommand{globals: &GlobalFlags{}}, term)
		assert.Contains(t, output, "No results found", "term %q", term)
	}
}

func TestSearchCommand_UntitledVisibility(t *testing.T) {
	hidden := testEnv(t)
	seedVisits(t, hidden, [2]string{"http://quick", ""})
	output := runSearch(t, hidden, &SearchCommand{globals: &GlobalFlags{}}, "quick")
	assert.Contains(t, output, "No results found")

	shown := testEnv(t, func(c *config.Config) { c.Query.HideUntitled = false })
	seedVisits(t, shown, [2]string{"http://quick", ""})
	output = runSearch(t, shown, &SearchCommand{globals: &GlobalFlags{}}, "quick")
	assert.Contains(t, output, "[0] (untitled) · quick")
}
