package prompts

import (
	"strings"
	"testing"

	"github.com/JaimeStill/briefer/pkg/pagination"
)

func TestListStmt(t *testing.T) {
	stage := StageNarrative
	active := true
	page := pagination.PageRequest{Page: 3, PageSize: 10, Search: "board", Sort: "-updated_at"}

	count, rows := listStmt(page, Filters{Stage: &stage, Active: &active})

	q, args, err := count.ToSql()
	if err != nil {
		t.Fatalf("count sql: %v", err)
	}
	if !strings.HasPrefix(q, "SELECT COUNT(*) FROM prompts WHERE") || strings.Contains(q, "ORDER BY") {
		t.Errorf("count sql = %s", q)
	}
	if len(args) != 4 {
		t.Errorf("count args = %v", args)
	}

	q, _, err = rows.ToSql()
	if err != nil {
		t.Fatalf("rows sql: %v", err)
	}
	for _, want := range []string{
		"stage = $1",
		"active = $2",
		"name ILIKE $3 OR description ILIKE $4",
		"ORDER BY updated_at DESC",
		"LIMIT 10 OFFSET 20",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("rows sql missing %q: %s", want, q)
		}
	}
}

func TestListStmtIgnoresUnknownSort(t *testing.T) {
	_, rows := listStmt(pagination.PageRequest{Page: 1, PageSize: 5, Sort: "instructions; DROP TABLE prompts"}, Filters{})

	q, args, err := rows.ToSql()
	if err != nil {
		t.Fatalf("rows sql: %v", err)
	}
	if !strings.Contains(q, "ORDER BY name ASC") || strings.Contains(q, "DROP") || strings.Contains(q, "WHERE") {
		t.Errorf("rows sql = %s", q)
	}
	if len(args) != 0 {
		t.Errorf("args = %v", args)
	}
}
