package summary

import (
	"regexp"
)

// CommonFailurePatterns are substrings frequently found in test failure messages.
var CommonFailurePatterns = []string{
	`[Tt]imed? ?out`,
	`[Aa]ssertion(Error)?`,
	`[Ee]xpected .+ (to|but)`,
	`panic(\.go)?:`,
	`connection (refused|reset)`,
	`[Nn]o such file or directory`,
	`[Nn]il pointer`,
	`[Uu]nauthorized|401`,
	`[Nn]ot [Ff]ound|404`,
	`5\d\d [A-Z]`,
}

// ErrorCounter is a map to handle a generic error counter, indexed by error pattern.
type ErrorCounter map[string]int

// NewErrorCounter counts the occurrences of each pattern in buf. The
// catch-all pattern `error` is always checked and "total" sums every match.
// A buffer without matches returns nil.
func NewErrorCounter(buf string, pattern []string) ErrorCounter {
	total := 0
	counters := make(ErrorCounter, len(pattern)+2)

	incError := func(err string, cnt int) {
		counters[err] += cnt
		total += cnt
	}

	for _, errName := range append(append([]string(nil), pattern...), `error`) {
		reErr, err := regexp.Compile(errName)
		if err != nil {
			continue
		}
		if matches := reErr.FindAllStringIndex(buf, -1); len(matches) != 0 {
			incError(errName, len(matches))
		}
	}

	if total == 0 {
		return nil
	}
	counters["total"] = total
	return counters
}

// MergeErrorCounters sums two counters into a new one. Either may be nil.
func MergeErrorCounters(ec1, ec2 ErrorCounter) ErrorCounter {
	merged := make(ErrorCounter, len(ec1)+len(ec2))
	for kerr, cnt := range ec1 {
		merged[kerr] += cnt
	}
	for kerr, cnt := range ec2 {
		merged[kerr] += cnt
	}
	return merged
}
