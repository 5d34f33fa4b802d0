package api

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

// byteOrderMark is written at the start of reports by some Windows tools.
const byteOrderMark = "\ufeff"

// Parser converts the complete content of one report file into test results.
// A structural problem with the document is returned as *ParseError; missing
// optional data is substituted and never returned as an error.
type Parser interface {
	Parse(content string) ([]TestResult, error)
	Name() string
}

// Sniffer inspects a document without fully parsing it and reports whether a parser should claim it.
type Sniffer func(content string) bool

type detectorEntry struct {
	sniff  Sniffer
	parser Parser
}

// Detector selects a parser for a document. Entries are tried in registration order;
// the first sniffer that matches wins.
type Detector struct {
	entries []detectorEntry
}

// NewDetector returns a detector with the built-in JUnit XML and mocha JSON parsers.
func NewDetector() *Detector {
	d := &Detector{}
	d.Register(SniffXMLRoot("testsuites", "testsuite"), &JUnitXMLParser{})
	d.Register(SniffJSONKeys("tests"), &MochaJSONParser{})
	return d
}

// Register appends a parser; it is tried after every parser registered before it.
func (d *Detector) Register(sniff Sniffer, parser Parser) {
	d.entries = append(d.entries, detectorEntry{sniff: sniff, parser: parser})
}

// Detect returns the first parser whose sniffer accepts content.
func (d *Detector) Detect(content string) (Parser, error) {
	for _, e := range d.entries {
		if e.sniff(content) {
			log.Debugf("detected %s report", e.parser.Name())
			return e.parser, nil
		}
	}
	return nil, &UnrecognizedFormatError{Hint: describe(content)}
}

// Parse detects the format of content and parses it.
func (d *Detector) Parse(content string) ([]TestResult, error) {
	content = trimBOM(content)
	p, err := d.Detect(content)
	if err != nil {
		return nil, err
	}
	return p.Parse(content)
}

// SniffXMLRoot matches XML documents whose root element has one of the given local names.
func SniffXMLRoot(names ...string) Sniffer {
	return func(content string) bool {
		root, ok := xmlRoot(content)
		if !ok {
			return false
		}
		for _, n := range names {
			if root == n {
				return true
			}
		}
		return false
	}
}

// SniffJSONKeys matches JSON objects carrying all the given top-level keys.
// Only the keys are read, so a document truncated after them is still claimed
// and its parser reports the structural error.
func SniffJSONKeys(keys ...string) Sniffer {
	hasAll := func(seen map[string]struct{}) bool {
		for _, k := range keys {
			if _, found := seen[k]; !found {
				return false
			}
		}
		return true
	}
	return func(content string) bool {
		seen, ok := jsonKeys(content, hasAll)
		return ok && hasAll(seen)
	}
}

func trimBOM(content string) string {
	return strings.TrimPrefix(content, byteOrderMark)
}

// newXMLDecoder decodes content with any charset declared in its prolog.
func newXMLDecoder(content string) *xml.Decoder {
	dec := xml.NewDecoder(strings.NewReader(trimBOM(content)))
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}

func xmlRoot(content string) (string, bool) {
	dec := newXMLDecoder(content)
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t.Name.Local, true
		case xml.CharData:
			// only whitespace may precede the root element
			if len(bytes.TrimSpace(t)) != 0 {
				return "", false
			}
		}
	}
}

// jsonKeys collects the top-level keys of a JSON object, stopping once done
// reports true or at the first malformed value. ok is false when content does
// not start with an object.
func jsonKeys(content string, done func(seen map[string]struct{}) bool) (seen map[string]struct{}, ok bool) {
	dec := json.NewDecoder(strings.NewReader(trimBOM(content)))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, isDelim := tok.(json.Delim); !isDelim || delim != '{' {
		return nil, false
	}

	seen = map[string]struct{}{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		key, isKey := tok.(string)
		if !isKey {
			break
		}
		seen[key] = struct{}{}
		if done != nil && done(seen) {
			break
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			break
		}
	}
	return seen, true
}

func describe(content string) string {
	if root, ok := xmlRoot(content); ok {
		return fmt.Sprintf("XML root <%s>", root)
	}
	if top, ok := jsonKeys(content, nil); ok {
		keys := make([]string, 0, len(top))
		for k := range top {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Sprintf("JSON keys [%s]", strings.Join(keys, ", "))
	}
	return ""
}
