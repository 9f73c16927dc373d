package roster

import (
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// Student is an immutable roster entry. Category is the job/specialty
// label used for per-group composition limits (the original input calls
// this column "AFSC").
type Student struct {
	Name     string
	Category string
}

// Roster is the ordered student list for one scheduling run.
// Index order is stable for the lifetime of the run and is the canonical
// index into the interaction ledger and every assignment model.
type Roster struct {
	students []Student
	byName   map[string]int
}

// New builds a Roster from an ordered student list.
// Names are NFC-normalized; empty and duplicate names are rejected because
// the history loaders link records to students by name.
func New(students []Student) (*Roster, error) {
	if len(students) == 0 {
		return nil, fmt.Errorf("roster is empty")
	}

	r := &Roster{
		students: make([]Student, len(students)),
		byName:   make(map[string]int, len(students)),
	}
	for i, s := range students {
		name := norm.NFC.String(s.Name)
		if name == "" {
			return nil, fmt.Errorf("roster row %d: empty student name", i+1)
		}
		if prev, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("roster row %d: duplicate student name %q (first at row %d)", i+1, name, prev+1)
		}
		r.students[i] = Student{Name: name, Category: norm.NFC.String(s.Category)}
		r.byName[name] = i
	}
	return r, nil
}

// Len returns the number of students.
func (r *Roster) Len() int { return len(r.students) }

// Student returns the student at index i.
func (r *Roster) Student(i int) Student { return r.students[i] }

// Index returns the roster index for a (normalized or raw) name.
func (r *Roster) Index(name string) (int, bool) {
	i, ok := r.byName[norm.NFC.String(name)]
	return i, ok
}

// Categories returns the distinct category labels in sorted order.
// Sorted order is load-bearing: the model builder iterates categories in
// this order, and the built model must be deterministic.
func (r *Roster) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, s := range r.students {
		if !seen[s.Category] {
			seen[s.Category] = true
			cats = append(cats, s.Category)
		}
	}
	sort.Strings(cats)
	return cats
}

// CategoryMembers returns the roster indices of every student with the
// given category, in roster order.
func (r *Roster) CategoryMembers(category string) []int {
	var members []int
	for i, s := range r.students {
		if s.Category == category {
			members = append(members, i)
		}
	}
	return members
}
