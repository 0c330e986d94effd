// Package form runs the interactive RSVP form: a prompt loop over the
// view model, with the live counts panel and roster re-rendered before
// every prompt. Change notifications refresh the model from another
// goroutine, so everything touching it goes through one mutex.
package form

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"potluck/src-client/remote"
	"potluck/src-client/store"
	"potluck/src-client/view"
)

// table is the slice of the remote adapter the form needs; tests swap
// in an in-memory one.
type table interface {
	FetchAll(ctx context.Context) ([]remote.Row, error)
	Insert(ctx context.Context, draft remote.Draft) (string, error)
	Update(ctx context.Context, id string, patch remote.Patch) error
	Remove(ctx context.Context, id string) error
}

type Form struct {
	mu       sync.Mutex
	model    *view.Model
	table    table
	identity *store.Identity
	out      io.Writer
}

func New(t table, identity *store.Identity, m *view.Model, out io.Writer) *Form {
	return &Form{
		model:    m,
		table:    t,
		identity: identity,
		out:      out,
	}
}

// Refresh refetches the whole table and swaps the snapshot in. Safe to
// call redundantly and from any goroutine.
func (f *Form) Refresh(ctx context.Context) error {
	rows, err := f.table.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("(*Form).Refresh: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.model.ApplySnapshot(rows)
	return nil
}

// Run reads commands until EOF or quit.
func (f *Form) Run(ctx context.Context, scanner *bufio.Scanner) {
	for {
		f.render()
		fmt.Fprint(f.out, "potluck> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg := line, ""
		if idx := strings.IndexByte(line, ' '); idx >= 0 {
			cmd, arg = line[:idx], strings.TrimSpace(line[idx+1:])
		}

		switch cmd {
		case "help":
			fmt.Fprintln(f.out, "Commands: name <text>, attend <yes|no>, category <c>, dish <text>, submit, edit, cancel, delete, refresh, exit")
			fmt.Fprintln(f.out, "Categories:", strings.Join(view.Categories, ", "))

		case "name":
			f.withModel(func(m *view.Model) { m.Name = arg })

		case "attend":
			switch strings.ToLower(arg) {
			case "yes", "y":
				f.withModel(func(m *view.Model) { m.Attending = true })
			case "no", "n":
				f.withModel(func(m *view.Model) { m.Attending = false })
			default:
				f.alert("attend takes yes or no")
			}

		case "category":
			matched := false
			for _, category := range view.Categories {
				if strings.EqualFold(arg, category) {
					f.withModel(func(m *view.Model) { m.Category = category })
					matched = true
					break
				}
			}
			if !matched {
				f.alert("unknown category, pick one of: " + strings.Join(view.Categories, ", "))
			}

		case "dish":
			f.withModel(func(m *view.Model) { m.Dish = arg })

		case "submit":
			f.submit(ctx)

		case "edit":
			f.withModel(func(m *view.Model) {
				row, ok := m.OwnRow()
				if !ok {
					f.alert("no response of yours to edit")
					return
				}
				m.StartEdit(row)
			})

		case "cancel":
			f.withModel(func(m *view.Model) { m.CancelEdit() })

		case "delete":
			f.remove(ctx, scanner)

		case "refresh":
			if err := f.Refresh(ctx); err != nil {
				f.alert(err.Error())
			}

		case "exit", "quit":
			fmt.Fprintln(f.out, "Bye!")
			return

		default:
			fmt.Fprintln(f.out, "Unknown command:", cmd)
		}
	}
}

func (f *Form) submit(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	submission, err := f.model.Submit()
	if errors.Is(err, view.ErrNameRequired) {
		f.alert("Name is required")
		return
	}
	if err != nil {
		f.alert(err.Error())
		return
	}

	if submission.Update {
		if err := f.table.Update(ctx, submission.ID, submission.Patch); err != nil {
			f.alert(err.Error())
			return
		}
		f.model.UpdateSucceeded()
		return
	}

	id, err := f.table.Insert(ctx, submission.Draft)
	if err != nil {
		f.alert(err.Error())
		return
	}
	if f.model.InsertSucceeded(id) {
		if err := f.identity.Save(id); err != nil {
			slog.Warn("can't persist identity token", "error", err)
		}
	}
}

func (f *Form) remove(ctx context.Context, scanner *bufio.Scanner) {
	f.mu.Lock()
	row, ok := f.model.OwnRow()
	f.mu.Unlock()
	if !ok {
		f.alert("no response of yours to delete")
		return
	}

	fmt.Fprintf(f.out, "Delete %q (%s: %s)? [y/N] ", row.Name, row.Category, row.Dish)
	if !scanner.Scan() {
		return
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	if answer != "y" && answer != "yes" {
		return
	}

	if err := f.table.Remove(ctx, row.ID); err != nil {
		f.alert(err.Error())
		return
	}
	f.withModel(func(m *view.Model) { m.CancelEdit() })
}

func (f *Form) render() {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.model

	counts := m.Counts()
	parts := make([]string, 0, len(view.Categories))
	for _, category := range view.Categories {
		parts = append(parts, fmt.Sprintf("%s: %d", category, counts[category]))
	}
	fmt.Fprintf(f.out, "\n%s  |  attending: %d\n", strings.Join(parts, "  "), m.TotalAttending())

	for _, group := range m.Roster() {
		fmt.Fprintf(f.out, "- %s\n", group.Name)
		for _, row := range group.Rows {
			attending := " "
			if row.Attending {
				attending = "x"
			}
			marker := ""
			if m.CanModify(row) {
				marker = "  (yours)"
			}
			fmt.Fprintf(f.out, "    [%s] %s: %s%s\n", attending, row.Category, row.Dish, marker)
		}
	}

	fmt.Fprintf(f.out, "[%s]  name=%q attend=%t category=%s dish=%q\n",
		m.SubmitLabel(), m.Name, m.Attending, m.Category, m.Dish)
}

func (f *Form) withModel(fn func(m *view.Model)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.model)
}

func (f *Form) alert(msg string) {
	fmt.Fprintln(f.out, "ALERT:", msg)
}
