package api

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/acarl005/stripansi"
	log "github.com/sirupsen/logrus"
)

const JUnitParserName = "junit"

// Parse the XML data (JUnit created by surefire, go-junit-report, jest-junit, pytest, ...)

type junitFailure struct {
	Message *string `xml:"message,attr"`
	Text    string  `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr"`
}

type junitTestCase struct {
	Name    *string       `xml:"name,attr"`
	Time    string        `xml:"time,attr"`
	Failure *junitFailure `xml:"failure"`
	Skipped *junitSkipped `xml:"skipped"`
}

// junitFrame is an open element while walking the document.
type junitFrame struct {
	local string
	name  *string
}

// JUnitXMLParser converts JUnit-style XML documents into test results.
type JUnitXMLParser struct{}

func (p *JUnitXMLParser) Name() string {
	return JUnitParserName
}

// Parse collects the test cases of every testsuite element in the document, at any
// depth and under any wrapper element, in document order.
func (p *JUnitXMLParser) Parse(content string) ([]TestResult, error) {
	dec := newXMLDecoder(content)
	results := []TestResult{}
	var stack []junitFrame
	rootSeen := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Parser: JUnitParserName, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !rootSeen {
				rootSeen = true
				if t.Name.Local != "testsuite" && t.Name.Local != "testsuites" {
					return nil, &ParseError{
						Parser: JUnitParserName,
						Err:    fmt.Errorf("expected element type <testsuite> or <testsuites> but have <%s>", t.Name.Local),
					}
				}
			}
			if t.Name.Local == "testcase" && len(stack) > 0 && stack[len(stack)-1].local == "testsuite" {
				tc := junitTestCase{}
				if err := dec.DecodeElement(&tc, &t); err != nil {
					return nil, &ParseError{Parser: JUnitParserName, Err: err}
				}
				results = append(results, tc.toResult(stack[len(stack)-1].name))
				continue
			}
			frame := junitFrame{local: t.Name.Local}
			if frame.local == "testsuite" {
				frame.name = attrValue(t, "name")
			}
			stack = append(stack, frame)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	if !rootSeen {
		return nil, &ParseError{Parser: JUnitParserName, Err: io.ErrUnexpectedEOF}
	}

	log.Debugf("junit: parsed %d test cases", len(results))
	return results, nil
}

func attrValue(el xml.StartElement, local string) *string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			v := a.Value
			return &v
		}
	}
	return nil
}

func (tc *junitTestCase) toResult(suiteName *string) TestResult {
	b := NewTestResultBuilder().WithStatus(TestStatusPassed)

	if tc.Name != nil {
		b.WithName(*tc.Name)
	} else {
		log.Warnf("junit: test case without name attribute, using placeholder")
		b.WithName(MissingTestName)
	}
	if suiteName != nil {
		b.WithSuiteName(*suiteName)
	}
	if seconds, ok := parseSeconds(tc.Time); ok {
		b.WithExecutionTime(seconds)
	} else if tc.Time != "" {
		log.Debugf("junit: ignoring invalid time %q for test case %q", tc.Time, b.result.Name)
	}

	switch {
	case tc.Failure != nil:
		b.WithStatus(TestStatusFailed)
		if msg, ok := tc.Failure.message(); ok {
			b.WithFailureMessage(msg)
		} else {
			log.Debugf("junit: failure without message for test case %q", b.result.Name)
		}
	case tc.Skipped != nil:
		b.WithStatus(TestStatusSkipped)
	}
	return b.Build()
}

// message prefers a non-empty message attribute and falls back to the element text.
func (f *junitFailure) message() (string, bool) {
	if f.Message != nil && strings.TrimSpace(*f.Message) != "" {
		return stripansi.Strip(*f.Message), true
	}
	if text := strings.TrimSpace(f.Text); text != "" {
		return stripansi.Strip(text), true
	}
	return "", false
}

// parseSeconds accepts only non-negative finite numbers.
func parseSeconds(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
