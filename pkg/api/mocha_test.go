package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
)

func TestMochaJSONParser(t *testing.T) {
	results, err := (&MochaJSONParser{}).Parse(readTestdata(t, "mocha.json"))
	require.NoError(t, err)
	require.Len(t, results, 3)

	passed := results[0]
	assert.Equal(t, "should pass this test", passed.Name)
	assert.Equal(t, ptr.To("My Suite"), passed.SuiteName)
	assert.Equal(t, TestStatusPassed, passed.Status)
	assert.Equal(t, ptr.To(0.01), passed.ExecutionTime)
	assert.Nil(t, passed.FailureMessage)

	failed := results[1]
	assert.Equal(t, "should fail this test", failed.Name)
	assert.Equal(t, TestStatusFailed, failed.Status)
	assert.Equal(t, ptr.To("Expected true to be false"), failed.FailureMessage)
	assert.Equal(t, ptr.To(0.005), failed.ExecutionTime)

	// state is omitted for pending tests, they are found through the pending list
	pending := results[2]
	assert.Equal(t, "should be a pending test", pending.Name)
	assert.Equal(t, TestStatusSkipped, pending.Status)
	assert.Nil(t, pending.ExecutionTime)
	assert.Nil(t, pending.FailureMessage)
}

func TestMochaJSONParserDegradedEntries(t *testing.T) {
	content := `{"tests": [
		{"fullTitle": "Suite only full title", "state": "passed"},
		{"state": "failed", "err": {}},
		42,
		{"title": "explicit pending", "state": "pending", "duration": -3},
		{"title": "flagged pending", "pending": true},
		{"title": "unknown", "state": "weird"}
	]}`

	results, err := (&MochaJSONParser{}).Parse(content)
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, "Suite only full title", results[0].Name)
	assert.Nil(t, results[0].SuiteName)

	assert.Equal(t, MissingTestName, results[1].Name)
	assert.Equal(t, TestStatusFailed, results[1].Status)
	assert.Nil(t, results[1].FailureMessage)

	assert.Equal(t, TestStatusSkipped, results[2].Status)
	assert.Nil(t, results[2].ExecutionTime)

	assert.Equal(t, TestStatusSkipped, results[3].Status)
	assert.Equal(t, TestStatusFailed, results[4].Status)
}

func TestMochaJSONParserErrors(t *testing.T) {
	for _, content := range []string{``, `{"tests": [`, `[1, 2]`, `{"tests": 3}`} {
		results, err := (&MochaJSONParser{}).Parse(content)
		assert.Nil(t, results, content)
		var perr *ParseError
		require.ErrorAs(t, err, &perr, content)
		assert.Equal(t, MochaParserName, perr.Parser)
	}
}

func TestMochaJSONParserFailureMessageStripsANSI(t *testing.T) {
	content := `{"tests": [{"title": "t", "state": "failed", "err": {"message": "\u001b[31mboom\u001b[39m"}}]}`

	results, err := (&MochaJSONParser{}).Parse(content)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ptr.To("boom"), results[0].FailureMessage)
}

func TestMochaJSONParserNoTests(t *testing.T) {
	results, err := (&MochaJSONParser{}).Parse(`{"stats": {}, "tests": []}`)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMochaJSONParserEmptyErrorMessage(t *testing.T) {
	content := `{"tests": [
		{"title": "stack only", "state": "failed", "err": {"message": "", "stack": "Error: timeout\n    at run (a.js:1:1)"}},
		{"title": "blank", "state": "failed", "err": {"message": "  "}}
	]}`

	results, err := (&MochaJSONParser{}).Parse(content)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, ptr.To("Error: timeout\n    at run (a.js:1:1)"), results[0].FailureMessage)
	assert.Nil(t, results[1].FailureMessage)
}

func TestMochaJSONParserByteOrderMark(t *testing.T) {
	results, err := (&MochaJSONParser{}).Parse("\ufeff" + `{"tests": [{"title": "t", "state": "passed"}]}`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, TestStatusPassed, results[0].Status)
}
