// Package export writes parsed test results to a spreadsheet for review.
package export

import (
	"fmt"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/testvox/testvox/pkg/api"
)

const (
	SheetResults  = "results"
	SheetFailures = "failures"

	defaultSheet = "Sheet1"

	// maxCellChars is the xlsx limit on characters in one cell.
	maxCellChars    = 32767
	truncatedSuffix = "\n[truncated]"
)

var header = []string{"Index", "Suite", "Test_Name", "Status", "Seconds", "Failure_Message"}

// WriteWorkbook saves results to an xlsx workbook at path: every result on the
// results sheet and failed results only on the failures sheet.
func WriteWorkbook(path string, results []api.TestResult) error {
	sheet := excelize.NewFile()
	defer func() {
		if err := sheet.Close(); err != nil {
			log.Error(err)
		}
	}()

	var failures []api.TestResult
	for _, tr := range results {
		if tr.Status == api.TestStatusFailed {
			failures = append(failures, tr)
		}
	}

	for _, s := range []struct {
		name    string
		results []api.TestResult
	}{
		{name: SheetResults, results: results},
		{name: SheetFailures, results: failures},
	} {
		if _, err := sheet.NewSheet(s.name); err != nil {
			return fmt.Errorf("unable to create sheet %s: %w", s.name, err)
		}
		if err := createSheet(sheet, s.name); err != nil {
			return err
		}
		if err := populateSheet(sheet, s.name, s.results); err != nil {
			return err
		}
	}

	idx, err := sheet.GetSheetIndex(SheetResults)
	if err != nil {
		return err
	}
	sheet.SetActiveSheet(idx)
	if err := sheet.DeleteSheet(defaultSheet); err != nil {
		return err
	}

	if err := sheet.SaveAs(path); err != nil {
		return fmt.Errorf("unable to save %s: %w", path, err)
	}
	log.Infof("%d results exported to %s", len(results), path)
	return nil
}

// createSheet writes the header row.
func createSheet(sheet *excelize.File, sheetName string) error {
	for i, v := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := sheet.SetCellValue(sheetName, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// populateSheet fills one row per result, starting below the header.
func populateSheet(sheet *excelize.File, sheetName string, results []api.TestResult) error {
	for idx, tr := range results {
		rowN := idx + 2
		row := []interface{}{idx + 1, cellText(tr.Suite()), cellText(tr.Name), tr.Status.String(), nil, nil}
		if tr.ExecutionTime != nil {
			row[4] = *tr.ExecutionTime
		}
		if tr.FailureMessage != nil {
			msg := *tr.FailureMessage
			if utf8.RuneCountInString(msg) > maxCellChars {
				log.Warnf("failure message of %q truncated to %d characters in sheet %s", tr.Name, maxCellChars, sheetName)
			}
			row[5] = cellText(msg)
		}
		for col, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, rowN)
			if err != nil {
				return err
			}
			if err := sheet.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("unable to write cell %s of sheet %s: %w", cell, sheetName, err)
			}
		}
	}
	return nil
}

// cellText cuts s to fit in one cell.
func cellText(s string) string {
	if utf8.RuneCountInString(s) <= maxCellChars {
		return s
	}
	keep := maxCellChars - utf8.RuneCountInString(truncatedSuffix)
	return string([]rune(s)[:keep]) + truncatedSuffix
}
