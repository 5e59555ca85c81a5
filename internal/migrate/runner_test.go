package migrate

import (
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want int
	}{
		{"two statements", "create table a(id text); create table b(id text);", 2},
		{"semicolon in string", "insert into t(v) values ('a;b'); select 1;", 2},
		{"dollar quoted body", "create function f() returns void as $$ begin perform 1; end $$ language plpgsql; select 1;", 2},
		{"trailing without semicolon", "select 1", 1},
		{"empty", "  \n ", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitStatements(tc.sql)
			if len(got) != tc.want {
				t.Fatalf("expected %d statements, got %d: %q", tc.want, len(got), got)
			}
		})
	}
}

func TestSplitStatementsKeepsContent(t *testing.T) {
	stmts := splitStatements("insert into t(v) values ('x'); delete from t;")
	if !strings.Contains(stmts[0], "insert") || !strings.Contains(stmts[1], "delete") {
		t.Fatalf("statement order lost: %q", stmts)
	}
}
