package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// RowIssue records a raw row the tolerant reader could not accept.
type RowIssue struct {
	Line   int
	Fields int
	Detail string
}

// Read loads a CSV file strictly: a header row is required and every data
// row must match its width. Used for artifacts this pipeline wrote itself,
// where any deviation is corruption.
func Read(path string) (*Table, error) {
	table, issues, err := readFile(path, false)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		first := issues[0]
		return nil, fmt.Errorf("read %s: line %d: %s", path, first.Line, first.Detail)
	}
	return table, nil
}

// ReadTolerant loads a CSV file, collecting structurally bad rows (wrong
// field count) as issues instead of failing. The caller decides whether the
// issues are acceptable.
func ReadTolerant(path string) (*Table, []RowIssue, error) {
	return readFile(path, true)
}

func readFile(path string, tolerant bool) (*Table, []RowIssue, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("read %s: empty file", path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: header: %w", path, err)
	}
	if len(header) == 0 {
		return nil, nil, fmt.Errorf("read %s: empty header", path)
	}

	table := NewTable(header...)
	var issues []RowIssue
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			if !tolerant {
				return nil, nil, fmt.Errorf("read %s: line %d: %w", path, line, err)
			}
			issues = append(issues, RowIssue{Line: line, Detail: err.Error()})
			continue
		}
		if len(record) != len(header) {
			issue := RowIssue{
				Line:   line,
				Fields: len(record),
				Detail: fmt.Sprintf("%d fields, header has %d", len(record), len(header)),
			}
			if !tolerant {
				return nil, []RowIssue{issue}, nil
			}
			issues = append(issues, issue)
			continue
		}
		table.Rows = append(table.Rows, record)
	}

	return table, issues, nil
}

// Write stores the table as CSV, header first.
func Write(path string, t *Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(t.ColumnNames()); err != nil {
		file.Close()
		return fmt.Errorf("write %s: header: %w", path, err)
	}
	for i, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			file.Close()
			return fmt.Errorf("write %s: row %d: %w", path, i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
