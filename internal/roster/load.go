package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// LoadCSV reads a roster from CSV. The first row must be a header with a
// name column and a category column; the original export uses the headers
// "Student Name" and "AFSC", and plain "name"/"category" are accepted too.
func LoadCSV(r io.Reader) (*Roster, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("roster CSV is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading roster header: %w", err)
	}

	nameCol, catCol := -1, -1
	for i, h := range header {
		switch normalizeHeader(h) {
		case "studentname", "name":
			nameCol = i
		case "afsc", "category":
			catCol = i
		}
	}
	if nameCol < 0 || catCol < 0 {
		return nil, fmt.Errorf("roster CSV must have name and category columns, got header %v", header)
	}

	var students []Student
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading roster row %d: %w", len(students)+2, err)
		}
		if nameCol >= len(row) || catCol >= len(row) {
			return nil, fmt.Errorf("roster row %d: expected at least %d columns, got %d", len(students)+2, max(nameCol, catCol)+1, len(row))
		}
		students = append(students, Student{
			Name:     strings.TrimSpace(row[nameCol]),
			Category: strings.TrimSpace(row[catCol]),
		})
	}
	return New(students)
}

// LoadCSVFile reads a roster from a CSV file on disk.
func LoadCSVFile(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()

	r, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// HistoryRecord is one externally supplied prior grouping: student Name
// was in group Group during session Session. Used to seed the interaction
// ledger in incremental mode.
type HistoryRecord struct {
	Session string
	Group   string
	Name    string
}

// LoadHistoryCSV reads prior grouping records from CSV with header
// columns session, group, name (the name column also accepts the roster
// export header "Student Name"). Names are NFC-normalized; linking them
// to the roster happens at seed time, not here.
func LoadHistoryCSV(r io.Reader) ([]HistoryRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("history CSV is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading history header: %w", err)
	}

	sessCol, groupCol, nameCol := -1, -1, -1
	for i, h := range header {
		switch normalizeHeader(h) {
		case "session", "course":
			sessCol = i
		case "group":
			groupCol = i
		case "studentname", "name":
			nameCol = i
		}
	}
	if sessCol < 0 || groupCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf("history CSV must have session, group and name columns, got header %v", header)
	}

	var records []HistoryRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading history row %d: %w", len(records)+2, err)
		}
		want := max(sessCol, groupCol, nameCol) + 1
		if len(row) < want {
			return nil, fmt.Errorf("history row %d: expected at least %d columns, got %d", len(records)+2, want, len(row))
		}
		records = append(records, HistoryRecord{
			Session: strings.TrimSpace(row[sessCol]),
			Group:   strings.TrimSpace(row[groupCol]),
			Name:    norm.NFC.String(strings.TrimSpace(row[nameCol])),
		})
	}
	return records, nil
}

// LoadHistoryCSVFile reads history records from a CSV file on disk.
func LoadHistoryCSVFile(path string) ([]HistoryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	records, err := LoadHistoryCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// normalizeHeader lowercases a header cell and strips spaces, underscores
// and a UTF-8 BOM so "Student Name", "student_name" and "name" all match.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\uFEFF")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "_", "")
	return h
}
