package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/acarl005/stripansi"
	log "github.com/sirupsen/logrus"
)

const MochaParserName = "mocha-json"

// mochaReport is the document written by mocha's built-in "json" reporter.
// Entries are kept loosely typed so a single bad entry cannot fail the whole file.
type mochaReport struct {
	Tests   []json.RawMessage `json:"tests"`
	Pending []json.RawMessage `json:"pending"`
}

// MochaJSONParser converts mocha JSON reporter output into test results.
type MochaJSONParser struct{}

func (p *MochaJSONParser) Name() string {
	return MochaParserName
}

func (p *MochaJSONParser) Parse(content string) ([]TestResult, error) {
	report := mochaReport{}
	if err := json.Unmarshal([]byte(trimBOM(content)), &report); err != nil {
		return nil, &ParseError{Parser: MochaParserName, Err: err}
	}

	pending := make(map[string]struct{}, len(report.Pending))
	for _, raw := range report.Pending {
		if entry, ok := decodeMochaEntry(raw); ok {
			pending[stringField(entry, "fullTitle")] = struct{}{}
		}
	}

	results := make([]TestResult, 0, len(report.Tests))
	for idx, raw := range report.Tests {
		entry, ok := decodeMochaEntry(raw)
		if !ok {
			log.Warnf("mocha: skipping tests[%d], entry is not an object", idx)
			continue
		}
		results = append(results, mochaResult(entry, pending))
	}

	log.Debugf("mocha: parsed %d tests", len(results))
	return results, nil
}

func decodeMochaEntry(raw json.RawMessage) (map[string]interface{}, bool) {
	entry := map[string]interface{}{}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	return entry, true
}

func mochaResult(entry map[string]interface{}, pending map[string]struct{}) TestResult {
	b := NewTestResultBuilder()

	title, hasTitle := entry["title"].(string)
	fullTitle, _ := entry["fullTitle"].(string)
	switch {
	case hasTitle:
		b.WithName(title)
	case fullTitle != "":
		b.WithName(fullTitle)
	default:
		log.Warnf("mocha: test without title, using placeholder")
		b.WithName(MissingTestName)
	}

	// fullTitle is "<suite titles> <test title>".
	if hasTitle && strings.HasSuffix(fullTitle, title) {
		if suite := strings.TrimSpace(strings.TrimSuffix(fullTitle, title)); suite != "" {
			b.WithSuiteName(suite)
		}
	}

	if ms, ok := entry["duration"].(float64); ok && ms >= 0 {
		b.WithExecutionTime(ms / 1000)
	}

	status := mochaStatus(entry, fullTitle, pending)
	b.WithStatus(status)
	if status == TestStatusFailed {
		if errObj, ok := entry["err"].(map[string]interface{}); ok {
			if msg, ok := mochaErrorMessage(errObj); ok {
				b.WithFailureMessage(stripansi.Strip(msg))
			}
		}
	}
	return b.Build()
}

// mochaErrorMessage prefers a non-empty err.message and falls back to err.stack.
func mochaErrorMessage(errObj map[string]interface{}) (string, bool) {
	for _, key := range []string{"message", "stack"} {
		if msg, ok := errObj[key].(string); ok && strings.TrimSpace(msg) != "" {
			return msg, true
		}
	}
	return "", false
}

func mochaStatus(entry map[string]interface{}, fullTitle string, pending map[string]struct{}) TestStatus {
	state, _ := entry["state"].(string)
	switch state {
	case "passed":
		return TestStatusPassed
	case "pending":
		return TestStatusSkipped
	case "failed":
		return TestStatusFailed
	case "":
		// mocha omits the state of pending tests; they are listed again under "pending".
		if pendingFlag, ok := entry["pending"].(bool); ok && pendingFlag {
			return TestStatusSkipped
		}
		if _, ok := pending[fullTitle]; ok && fullTitle != "" {
			return TestStatusSkipped
		}
	}
	log.Debugf("mocha: unknown state %q for %q, reporting as failed", state, fullTitle)
	return TestStatusFailed
}

func stringField(entry map[string]interface{}, key string) string {
	if v, ok := entry[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return ""
}
