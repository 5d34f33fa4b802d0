// Package reader resolves report file patterns and loads their content,
// decompressing xz files.
package reader

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"

	"github.com/testvox/testvox/pkg/report"
)

const xzExtension = ".xz"

// Expand resolves glob patterns into file paths. Paths keep the pattern order,
// matches of one pattern are sorted and duplicates are dropped.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid pattern %q", pattern)
		}
		if len(matches) == 0 {
			log.Warnf("pattern %q matched no files", pattern)
			continue
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.IsDir() {
				log.Debugf("skipping directory %s", m)
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	return files, nil
}

// ReadFile returns the text content of a report file. Files ending in .xz are decompressed.
func ReadFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(path, xzExtension) {
		return string(raw), nil
	}

	r, err := xz.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", errors.Wrap(err, "unable to open xz stream")
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "unable to decompress xz stream")
	}
	return string(content), nil
}

// ReadAll loads every path. Unreadable files are returned as failures and left out of the inputs.
func ReadAll(paths []string) ([]report.Input, []report.FileFailure) {
	inputs := make([]report.Input, 0, len(paths))
	var failures []report.FileFailure
	for _, p := range paths {
		content, err := ReadFile(p)
		if err != nil {
			log.Warnf("unable to read %s: %v", p, err)
			failures = append(failures, report.FileFailure{Source: p, Err: err})
			continue
		}
		inputs = append(inputs, report.Input{Source: p, Content: content})
	}
	return inputs, failures
}
