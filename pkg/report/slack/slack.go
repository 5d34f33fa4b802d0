// Package slack renders a finalized report as a Slack Block Kit message payload.
package slack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/testvox/testvox/pkg/api"
	"github.com/testvox/testvox/pkg/report"
)

const (
	MissingFailureMessage = "⚠️ missing failure message"
	NoTestResults         = "⚠️ unable to find test results"
	LinkLabel             = "🔗 Open test run"

	// MaxBlocks is the number of blocks Slack accepts in one message.
	MaxBlocks = 50
)

// Block types.
const (
	BlockHeader  = "header"
	BlockSection = "section"
	BlockDivider = "divider"
	BlockActions = "actions"
)

// Text object types.
const (
	TextPlain    = "plain_text"
	TextMarkdown = "mrkdwn"
)

const ElementButton = "button"

// Text is a Block Kit text object.
type Text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// Element is an interactive element of an actions block.
type Element struct {
	Type string `json:"type"`
	Text Text   `json:"text"`
	URL  string `json:"url,omitempty"`
}

// Block is a layout block, discriminated by Type.
type Block struct {
	Type     string    `json:"type"`
	Text     *Text     `json:"text,omitempty"`
	Elements []Element `json:"elements,omitempty"`
}

// Report is the message payload posted to Slack.
type Report struct {
	Blocks []Block `json:"blocks"`
}

var _ report.Reporter = (*Report)(nil)

func plainText(s string) *Text {
	return &Text{Type: TextPlain, Text: s, Emoji: true}
}

func markdown(s string) *Text {
	return &Text{Type: TextMarkdown, Text: s}
}

func Header(title string) Block {
	return Block{Type: BlockHeader, Text: plainText(title)}
}

func Section(text string) Block {
	return Block{Type: BlockSection, Text: markdown(text)}
}

func Divider() Block {
	return Block{Type: BlockDivider}
}

func LinkButton(label, url string) Block {
	return Block{
		Type: BlockActions,
		Elements: []Element{{
			Type: ElementButton,
			Text: *plainText(label),
			URL:  url,
		}},
	}
}

// From maps a finalized report to its Slack blocks.
func From(r report.Report) *Report {
	blocks := []Block{Header(r.Title)}

	if len(r.Results) == 0 {
		blocks = append(blocks, Divider(), Section(NoTestResults))
	}
	for _, tr := range r.Results {
		blocks = append(blocks, Divider(), Section(MarkdownLine(tr)))
	}

	if r.Link != nil {
		blocks = append(blocks, Divider(), LinkButton(LinkLabel, r.Link.String()))
	}

	if len(blocks) > MaxBlocks {
		log.Warnf("slack: report has %d blocks, Slack accepts at most %d per message", len(blocks), MaxBlocks)
	}
	return &Report{Blocks: blocks}
}

// MarkdownLine is the Slack mrkdwn text of a single test result.
func MarkdownLine(tr api.TestResult) string {
	switch tr.Status {
	case api.TestStatusPassed:
		return fmt.Sprintf("✅ _%s_ *passed* (`%ss`)", tr.Name, FormatSeconds(tr.Seconds()))
	case api.TestStatusSkipped:
		return fmt.Sprintf("⏭️ _%s_ was *skipped*", tr.Name)
	default:
		msg := MissingFailureMessage
		if tr.FailureMessage != nil {
			msg = *tr.FailureMessage
		}
		return fmt.Sprintf("❌ _%s_ *failed* (`%ss`): ```%s```", tr.Name, FormatSeconds(tr.Seconds()), msg)
	}
}

// FormatSeconds prints the shortest representation of s that always carries a
// fractional part, e.g. 0 -> "0.0", 2.113871 -> "2.113871".
func FormatSeconds(s float64) string {
	out := strconv.FormatFloat(s, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

// JSON encodes the payload as indented JSON without HTML escaping.
func (r *Report) JSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Render returns the payload as pretty printed JSON.
func (r *Report) Render() string {
	out, err := r.JSON()
	if err != nil {
		// plain strings and slices always encode
		log.Errorf("unable to encode slack report: %v", err)
		return ""
	}
	return string(out)
}
