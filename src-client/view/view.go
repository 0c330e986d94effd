// Package view derives everything the form shows from the latest full
// snapshot of the remote responses table plus the locally remembered
// identity. Every derivation recomputes from scratch; at potluck scale
// there is nothing worth caching.
package view

import (
	"errors"
	"strings"

	"potluck/src-client/remote"
)

// The categories the form offers, in display order. A row whose
// category is not one of these is kept in the roster but counted in no
// bucket.
var Categories = []string{"Main", "Appetizer", "Dessert", "Drink"}

var ErrNameRequired = errors.New("name is required")

// Model is the whole client-side state: the snapshot, the editable
// form fields, the owned row id and the edit target. Identity is
// row-id based; only the one row whose id matches IdentityID gets
// edit/delete affordances.
type Model struct {
	Responses []remote.Row

	Name      string
	Attending bool
	Category  string
	Dish      string

	IdentityID string
	EditingID  string
}

func NewModel(identityID string) *Model {
	return &Model{
		Responses:  make([]remote.Row, 0),
		Attending:  true,
		Category:   Categories[0],
		IdentityID: identityID,
	}
}

// ApplySnapshot replaces the cached table wholesale. Snapshots arrive
// unordered and possibly redundantly; replacing is total, so applying
// them in any order converges on whichever arrived last.
func (m *Model) ApplySnapshot(rows []remote.Row) {
	if rows == nil {
		rows = make([]remote.Row, 0)
	}
	m.Responses = rows
}

// Counts tallies attending rows per fixed category.
func (m *Model) Counts() map[string]int {
	counts := make(map[string]int, len(Categories))
	for _, category := range Categories {
		counts[category] = 0
	}
	for _, row := range m.Responses {
		if !row.Attending {
			continue
		}
		if _, ok := counts[row.Category]; !ok {
			continue
		}
		counts[row.Category]++
	}
	return counts
}

// TotalAttending counts people, not rows: distinct names among
// attending rows, since one person may bring several dishes.
func (m *Model) TotalAttending() int {
	seen := make(map[string]struct{})
	for _, row := range m.Responses {
		if !row.Attending {
			continue
		}
		seen[row.Name] = struct{}{}
	}
	return len(seen)
}

type RosterGroup struct {
	Name string
	Rows []remote.Row
}

// Roster partitions the snapshot by name, groups ordered by the first
// appearance of each name. Every row lands in exactly one group.
func (m *Model) Roster() []RosterGroup {
	order := make([]string, 0)
	byName := make(map[string][]remote.Row)
	for _, row := range m.Responses {
		if _, ok := byName[row.Name]; !ok {
			order = append(order, row.Name)
		}
		byName[row.Name] = append(byName[row.Name], row)
	}

	groups := make([]RosterGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, RosterGroup{Name: name, Rows: byName[name]})
	}
	return groups
}

// CanModify reports whether edit/delete affordances apply to a row:
// exact id match against the remembered identity, nothing else.
func (m *Model) CanModify(row remote.Row) bool {
	return m.IdentityID != "" && row.ID == m.IdentityID
}

// OwnRow finds the identity row in the current snapshot. It can be
// absent: never inserted yet, or deleted from another device.
func (m *Model) OwnRow() (remote.Row, bool) {
	for _, row := range m.Responses {
		if m.CanModify(row) {
			return row, true
		}
	}
	return remote.Row{}, false
}

func (m *Model) Editing() bool {
	return m.EditingID != ""
}

func (m *Model) SubmitLabel() string {
	if m.Editing() {
		return "Update response"
	}
	return "Add response"
}

// StartEdit loads a row into the form fields and switches the submit
// button to update mode.
func (m *Model) StartEdit(row remote.Row) {
	m.EditingID = row.ID
	m.Name = row.Name
	m.Attending = row.Attending
	m.Category = row.Category
	m.Dish = row.Dish
}

func (m *Model) CancelEdit() {
	m.EditingID = ""
}

// Submission is what a submit resolves to: an update of the edit
// target, or an insert of a fresh draft.
type Submission struct {
	Update bool
	ID     string
	Draft  remote.Draft
	Patch  remote.Patch
}

// Submit validates the form and decides insert-vs-update. The only
// validated field is the name.
func (m *Model) Submit() (Submission, error) {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return Submission{}, ErrNameRequired
	}

	if m.Editing() {
		attending := m.Attending
		category := m.Category
		dish := m.Dish
		return Submission{
			Update: true,
			ID:     m.EditingID,
			Patch: remote.Patch{
				Name:      &name,
				Attending: &attending,
				Category:  &category,
				Dish:      &dish,
			},
		}, nil
	}

	return Submission{
		Draft: remote.Draft{
			Name:      name,
			Attending: m.Attending,
			Category:  m.Category,
			Dish:      m.Dish,
		},
	}, nil
}

// InsertSucceeded transitions the form after a successful insert:
// adopt the new row as identity if none is remembered yet, then reset
// category and dish but keep the name, so adding a second dish doesn't
// mean retyping it. Reports whether the identity was adopted now.
func (m *Model) InsertSucceeded(id string) bool {
	adopted := false
	if m.IdentityID == "" {
		m.IdentityID = id
		adopted = true
	}
	m.EditingID = ""
	m.Category = Categories[0]
	m.Dish = ""
	return adopted
}

// UpdateSucceeded leaves edit mode; the change notification from our
// own write triggers the refetch that shows the result.
func (m *Model) UpdateSucceeded() {
	m.EditingID = ""
	m.Category = Categories[0]
	m.Dish = ""
}
