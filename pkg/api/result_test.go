package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/utils/ptr"
)

func TestTestResultBuilder(t *testing.T) {
	tr := NewTestResultBuilder().
		WithName("a test name").
		WithExecutionTime(1.2).
		WithStatus(TestStatusFailed).
		WithFailureMessage("something bad happened").
		WithSuiteName("a suite name").
		Build()

	assert.Equal(t, "a test name", tr.Name)
	assert.Equal(t, ptr.To(1.2), tr.ExecutionTime)
	assert.Equal(t, TestStatusFailed, tr.Status)
	assert.Equal(t, ptr.To("something bad happened"), tr.FailureMessage)
	assert.Equal(t, ptr.To("a suite name"), tr.SuiteName)
}

func TestTestResultBuilderDefaults(t *testing.T) {
	tr := NewTestResultBuilder().WithName("bare").Build()

	assert.Equal(t, TestStatusFailed, tr.Status)
	assert.Nil(t, tr.SuiteName)
	assert.Nil(t, tr.ExecutionTime)
	assert.Nil(t, tr.FailureMessage)
	assert.Equal(t, 0.0, tr.Seconds())
	assert.Equal(t, "", tr.Suite())
}

func TestTestResultBuilderDoesNotAlias(t *testing.T) {
	b := NewTestResultBuilder().WithName("first").WithExecutionTime(1)
	first := b.Build()
	second := b.WithName("second").WithExecutionTime(2).Build()

	assert.Equal(t, "first", first.Name)
	assert.Equal(t, 1.0, first.Seconds())
	assert.Equal(t, "second", second.Name)
	assert.Equal(t, 2.0, second.Seconds())

	*second.ExecutionTime = 3
	assert.Equal(t, 1.0, first.Seconds())
}

func TestTestStatusOrder(t *testing.T) {
	assert.True(t, TestStatusFailed.Less(TestStatusSkipped))
	assert.True(t, TestStatusSkipped.Less(TestStatusPassed))
	assert.True(t, TestStatusFailed.Less(TestStatusPassed))
	assert.False(t, TestStatusPassed.Less(TestStatusFailed))
	assert.False(t, TestStatusSkipped.Less(TestStatusSkipped))
}

func TestTestStatusString(t *testing.T) {
	assert.Equal(t, "Failed", TestStatusFailed.String())
	assert.Equal(t, "Skipped", TestStatusSkipped.String())
	assert.Equal(t, "Passed", TestStatusPassed.String())
	assert.Equal(t, "TestStatus(7)", TestStatus(7).String())
}
