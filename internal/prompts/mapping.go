package prompts

import (
	"net/url"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/JaimeStill/briefer/pkg/pagination"
	"github.com/JaimeStill/briefer/pkg/repository"
)

var columns = []string{
	"id", "name", "stage", "instructions", "description", "active", "created_at", "updated_at",
}

var sortable = map[string]string{
	"name":       "name",
	"stage":      "stage",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func returning() string {
	return "RETURNING " + strings.Join(columns, ", ")
}

// Filters narrows prompt listings. Nil fields are ignored. Stage and Active
// match exactly; Name matches case-insensitively as a substring.
type Filters struct {
	Stage  *Stage  `json:"stage,omitempty"`
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Apply adds the filter conditions to a select.
func (f Filters) Apply(b sq.SelectBuilder) sq.SelectBuilder {
	if f.Stage != nil {
		b = b.Where(sq.Eq{"stage": *f.Stage})
	}
	if f.Name != nil {
		b = b.Where(sq.ILike{"name": "%" + *f.Name + "%"})
	}
	if f.Active != nil {
		b = b.Where(sq.Eq{"active": *f.Active})
	}
	return b
}

// FiltersFromQuery reads stage, name, and active from URL query values.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("stage"); s != "" {
		stage := Stage(s)
		f.Stage = &stage
	}
	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	if a := values.Get("active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.Active = &v
		}
	}
	return f
}

func listStmt(page pagination.PageRequest, filters Filters) (sq.SelectBuilder, sq.SelectBuilder) {
	base := filters.Apply(repository.Builder.Select().From("prompts"))
	if page.Search != "" {
		pattern := "%" + page.Search + "%"
		base = base.Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"description": pattern},
		})
	}

	count := base.Column("COUNT(*)")

	order := "name ASC"
	if field, desc := page.SortField(); sortable[field] != "" {
		order = sortable[field] + " ASC"
		if desc {
			order = sortable[field] + " DESC"
		}
	}

	rows := base.
		Columns(columns...).
		OrderBy(order).
		Limit(uint64(page.PageSize)).
		Offset(uint64(page.Offset()))

	return count, rows
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Stage,
		&p.Instructions,
		&p.Description,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
