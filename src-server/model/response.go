package model

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// The four categories the form offers. Nothing at the database level
// enforces them; a row with any other value is kept but never counted.
const (
	CategoryMain      = "Main"
	CategoryAppetizer = "Appetizer"
	CategoryDessert   = "Dessert"
	CategoryDrink     = "Drink"
)

func Categories() []string {
	return []string{CategoryMain, CategoryAppetizer, CategoryDessert, CategoryDrink}
}

// One RSVP row: one person's attendance plus one dish. A person adding
// more dishes gets more rows under the same name.
type Response struct {
	bun.BaseModel `bun:"table:responses"`

	ID        string `bun:"id,pk"`            // required
	Name      string `bun:"name,notnull"`     // required
	Attending bool   `bun:"attending"`
	Category  string `bun:"category,notnull"` // required
	Dish      string `bun:"dish"`

	CreatedAtUnixUTC int64 `bun:"created_at,notnull"`
}

// Insert assigns the server-side fields (id, created_at) and writes the
// row. The id never changes after this.
func (r *Response) Insert(ctx context.Context, db bun.IDB) error {
	if r.Name == "" {
		return fmt.Errorf("(*Response).Insert: name is blank")
	}
	if r.Category == "" {
		return fmt.Errorf("(*Response).Insert: category is blank")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAtUnixUTC == 0 {
		r.CreatedAtUnixUTC = time.Now().UTC().Unix()
	}

	if _, err := db.NewInsert().
		Model(r).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Response).Insert: %w", err)
	}

	return nil
}
