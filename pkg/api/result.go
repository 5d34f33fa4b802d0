package api

import (
	"fmt"

	"k8s.io/utils/ptr"
)

// TestStatus is the normalized outcome of a test case.
// The numeric order is the report order: worst outcome first.
type TestStatus int

const (
	TestStatusFailed TestStatus = iota
	TestStatusSkipped
	TestStatusPassed
)

func (s TestStatus) String() string {
	switch s {
	case TestStatusFailed:
		return "Failed"
	case TestStatusSkipped:
		return "Skipped"
	case TestStatusPassed:
		return "Passed"
	default:
		return fmt.Sprintf("TestStatus(%d)", int(s))
	}
}

// Less reports whether s sorts before other (Failed < Skipped < Passed).
func (s TestStatus) Less(other TestStatus) bool {
	return s < other
}

// TestResult is the normalized outcome of one test case.
// Optional fields are nil when the source report did not carry them.
type TestResult struct {
	Name           string
	SuiteName      *string
	ExecutionTime  *float64 // seconds
	Status         TestStatus
	FailureMessage *string
}

// Seconds returns the execution time, or zero when it is unknown.
func (t TestResult) Seconds() float64 {
	return ptr.Deref(t.ExecutionTime, 0)
}

// Suite returns the suite name, or an empty string when it is unknown.
func (t TestResult) Suite() string {
	return ptr.Deref(t.SuiteName, "")
}

// TestResultBuilder builds TestResult values. The zero status is Failed.
type TestResultBuilder struct {
	result TestResult
}

func NewTestResultBuilder() *TestResultBuilder {
	return &TestResultBuilder{}
}

func (b *TestResultBuilder) WithName(name string) *TestResultBuilder {
	b.result.Name = name
	return b
}

func (b *TestResultBuilder) WithSuiteName(suite string) *TestResultBuilder {
	b.result.SuiteName = ptr.To(suite)
	return b
}

func (b *TestResultBuilder) WithExecutionTime(seconds float64) *TestResultBuilder {
	b.result.ExecutionTime = ptr.To(seconds)
	return b
}

func (b *TestResultBuilder) WithStatus(status TestStatus) *TestResultBuilder {
	b.result.Status = status
	return b
}

func (b *TestResultBuilder) WithFailureMessage(message string) *TestResultBuilder {
	b.result.FailureMessage = ptr.To(message)
	return b
}

// Build returns a copy of the configured result; the builder can keep being used.
func (b *TestResultBuilder) Build() TestResult {
	r := b.result
	if r.SuiteName != nil {
		r.SuiteName = ptr.To(*r.SuiteName)
	}
	if r.ExecutionTime != nil {
		r.ExecutionTime = ptr.To(*r.ExecutionTime)
	}
	if r.FailureMessage != nil {
		r.FailureMessage = ptr.To(*r.FailureMessage)
	}
	return r
}
