package view_test

import (
	"testing"

	"potluck/src-client/remote"
	"potluck/src-client/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsAttendingOnly(t *testing.T) {
	m := view.NewModel("")
	m.ApplySnapshot([]remote.Row{
		{ID: "1", Name: "Ada", Attending: true, Category: "Main", Dish: "Lasagna"},
		{ID: "2", Name: "Grace", Attending: true, Category: "Main", Dish: "Stew"},
		{ID: "3", Name: "Edsger", Attending: false, Category: "Dessert", Dish: "Pie"},
		{ID: "4", Name: "Barbara", Attending: true, Category: "Drink", Dish: "Cider"},
	})

	counts := m.Counts()
	assert.Equal(t, 2, counts["Main"])
	assert.Equal(t, 0, counts["Appetizer"])
	assert.Equal(t, 0, counts["Dessert"]) // not attending, not counted
	assert.Equal(t, 1, counts["Drink"])
}

func TestCountsTolerateUnknownCategory(t *testing.T) {
	m := view.NewModel("")
	m.ApplySnapshot([]remote.Row{
		{ID: "1", Name: "Ada", Attending: true, Category: "Main"},
		{ID: "2", Name: "Mallory", Attending: true, Category: "Mystery"},
	})

	counts := m.Counts()
	total := 0
	for _, category := range view.Categories {
		total += counts[category]
	}
	// the corrupted row lands in no bucket
	assert.Equal(t, 1, total)
	assert.NotContains(t, counts, "Mystery")

	// it still shows up in the roster
	roster := m.Roster()
	require.Len(t, roster, 2)
}

func TestCountsSumBound(t *testing.T) {
	m := view.NewModel("")
	m.ApplySnapshot([]remote.Row{
		{ID: "1", Name: "Ada", Attending: true, Category: "Main"},
		{ID: "2", Name: "Ada", Attending: true, Category: "Dessert"},
		{ID: "3", Name: "Grace", Attending: false, Category: "Main"},
		{ID: "4", Name: "Mallory", Attending: true, Category: "Mystery"},
	})

	sum := 0
	for _, count := range m.Counts() {
		sum += count
	}
	qualifying := 0
	for _, row := range m.Responses {
		if row.Attending {
			qualifying++
		}
	}
	assert.LessOrEqual(t, sum, qualifying)
	assert.Equal(t, 2, sum)
}

func TestTotalAttendingCountsPeopleNotRows(t *testing.T) {
	m := view.NewModel("")
	m.ApplySnapshot([]remote.Row{
		{ID: "1", Name: "Ada", Attending: true, Category: "Main"},
		{ID: "2", Name: "Ada", Attending: true, Category: "Dessert"},
		{ID: "3", Name: "Grace", Attending: true, Category: "Drink"},
		{ID: "4", Name: "Edsger", Attending: false, Category: "Main"},
	})

	assert.Equal(t, 2, m.TotalAttending())
}

func TestRosterIsAPartition(t *testing.T) {
	rows := []remote.Row{
		{ID: "1", Name: "Ada", Category: "Main"},
		{ID: "2", Name: "Grace", Category: "Drink"},
		{ID: "3", Name: "Ada", Category: "Dessert"},
		{ID: "4", Name: "Edsger", Category: "Appetizer"},
	}
	m := view.NewModel("")
	m.ApplySnapshot(rows)

	roster := m.Roster()

	// groups ordered by first appearance
	names := make([]string, 0, len(roster))
	for _, group := range roster {
		names = append(names, group.Name)
	}
	assert.Equal(t, []string{"Ada", "Grace", "Edsger"}, names)

	// every row in exactly one group, union equals the snapshot
	seen := make(map[string]string)
	total := 0
	for _, group := range roster {
		for _, row := range group.Rows {
			assert.Equal(t, group.Name, row.Name)
			_, dup := seen[row.ID]
			assert.False(t, dup, "row %s in more than one group", row.ID)
			seen[row.ID] = group.Name
			total++
		}
	}
	assert.Equal(t, len(rows), total)
}

func TestOwnershipGating(t *testing.T) {
	rows := []remote.Row{
		{ID: "a", Name: "Ada", Category: "Main"},
		{ID: "b", Name: "Ada", Category: "Dessert"},
		{ID: "c", Name: "Grace", Category: "Drink"},
	}

	// identity set: exactly the one matching row is modifiable
	m := view.NewModel("b")
	m.ApplySnapshot(rows)
	modifiable := 0
	for _, row := range rows {
		if m.CanModify(row) {
			modifiable++
			assert.Equal(t, "b", row.ID)
		}
	}
	assert.Equal(t, 1, modifiable)

	own, ok := m.OwnRow()
	require.True(t, ok)
	assert.Equal(t, "b", own.ID)

	// no identity: nothing is modifiable, even rows with a blank id
	fresh := view.NewModel("")
	fresh.ApplySnapshot(append(rows, remote.Row{ID: "", Name: "Ghost"}))
	for _, row := range fresh.Responses {
		assert.False(t, fresh.CanModify(row))
	}
	_, ok = fresh.OwnRow()
	assert.False(t, ok)
}

func TestSubmitRequiresName(t *testing.T) {
	m := view.NewModel("")
	m.Name = "   "

	_, err := m.Submit()
	assert.ErrorIs(t, err, view.ErrNameRequired)
}

func TestSubmitInsertThenEdit(t *testing.T) {
	m := view.NewModel("")
	m.Name = "Ada"
	m.Attending = true
	m.Category = "Dessert"
	m.Dish = "Pie"

	// create mode
	assert.Equal(t, "Add response", m.SubmitLabel())
	submission, err := m.Submit()
	require.NoError(t, err)
	assert.False(t, submission.Update)
	assert.Equal(t, remote.Draft{Name: "Ada", Attending: true, Category: "Dessert", Dish: "Pie"}, submission.Draft)

	// first success adopts identity and resets dish/category, keeps name
	adopted := m.InsertSucceeded("row-1")
	assert.True(t, adopted)
	assert.Equal(t, "row-1", m.IdentityID)
	assert.Equal(t, "Ada", m.Name)
	assert.Equal(t, view.Categories[0], m.Category)
	assert.Empty(t, m.Dish)

	// a second insert doesn't steal identity
	m.Category = "Drink"
	m.Dish = "Cider"
	adopted = m.InsertSucceeded("row-2")
	assert.False(t, adopted)
	assert.Equal(t, "row-1", m.IdentityID)

	// edit mode
	row := remote.Row{ID: "row-1", Name: "Ada", Attending: true, Category: "Dessert", Dish: "Pie"}
	m.StartEdit(row)
	assert.True(t, m.Editing())
	assert.Equal(t, "Update response", m.SubmitLabel())

	submission, err = m.Submit()
	require.NoError(t, err)
	assert.True(t, submission.Update)
	assert.Equal(t, "row-1", submission.ID)
	require.NotNil(t, submission.Patch.Name)
	assert.Equal(t, "Ada", *submission.Patch.Name)
	require.NotNil(t, submission.Patch.Category)
	assert.Equal(t, "Dessert", *submission.Patch.Category)

	m.UpdateSucceeded()
	assert.False(t, m.Editing())
}

// Submitting an edit with untouched fields patches exactly the values
// already on the row, so a refetch afterwards changes nothing.
func TestEditWithoutChangesIsIdempotent(t *testing.T) {
	row := remote.Row{ID: "row-1", Name: "Ada", Attending: true, Category: "Main", Dish: "Lasagna"}
	m := view.NewModel("row-1")
	m.ApplySnapshot([]remote.Row{row})

	m.StartEdit(row)
	submission, err := m.Submit()
	require.NoError(t, err)

	assert.Equal(t, row.Name, *submission.Patch.Name)
	assert.Equal(t, row.Attending, *submission.Patch.Attending)
	assert.Equal(t, row.Category, *submission.Patch.Category)
	assert.Equal(t, row.Dish, *submission.Patch.Dish)
}

func TestInsertUpdateDeleteScenario(t *testing.T) {
	m := view.NewModel("row-ada")

	// insert lands
	m.ApplySnapshot([]remote.Row{
		{ID: "row-ada", Name: "Ada", Attending: true, Category: "Main", Dish: "Lasagna"},
	})
	assert.Equal(t, 1, m.Counts()["Main"])
	assert.Equal(t, 1, m.TotalAttending())
	roster := m.Roster()
	require.Len(t, roster, 1)
	assert.Equal(t, "Ada", roster[0].Name)
	assert.Equal(t, "Lasagna", roster[0].Rows[0].Dish)

	// category updated remotely
	m.ApplySnapshot([]remote.Row{
		{ID: "row-ada", Name: "Ada", Attending: true, Category: "Dessert", Dish: "Lasagna"},
	})
	assert.Equal(t, 0, m.Counts()["Main"])
	assert.Equal(t, 1, m.Counts()["Dessert"])
	assert.Equal(t, 1, m.TotalAttending())

	// row deleted
	m.ApplySnapshot([]remote.Row{})
	for _, count := range m.Counts() {
		assert.Zero(t, count)
	}
	assert.Zero(t, m.TotalAttending())
	assert.Empty(t, m.Roster())
}

// Snapshots applied in any order and any number of times leave the
// model equal to whichever snapshot came last.
func TestApplySnapshotConverges(t *testing.T) {
	older := []remote.Row{{ID: "1", Name: "Ada", Attending: true, Category: "Main"}}
	newer := []remote.Row{
		{ID: "1", Name: "Ada", Attending: true, Category: "Main"},
		{ID: "2", Name: "Grace", Attending: true, Category: "Drink"},
	}

	m := view.NewModel("")
	m.ApplySnapshot(newer)
	m.ApplySnapshot(older)
	m.ApplySnapshot(newer)
	m.ApplySnapshot(newer)

	assert.Equal(t, newer, m.Responses)
	assert.Equal(t, 2, m.TotalAttending())

	// a malformed fetch degraded to nil still yields a usable model
	m.ApplySnapshot(nil)
	assert.NotNil(t, m.Responses)
	assert.Empty(t, m.Roster())
}
