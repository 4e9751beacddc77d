package main

import (
	"reflect"
	"testing"
)

func TestParseMigrationFile(t *testing.T) {
	tests := []struct {
		name string
		want migrationFile
		ok   bool
	}{
		{"001_initial_schema.sql", migrationFile{1, false, "001_initial_schema.sql"}, true},
		{"002_summary_day_key_reverse.sql", migrationFile{2, true, "002_summary_day_key_reverse.sql"}, true},
		{"README.md", migrationFile{}, false},
		{"initial.sql", migrationFile{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseMigrationFile(tt.name)

			if ok != tt.ok || got != tt.want {
				t.Errorf("parseMigrationFile() = %+v, %v", got, ok)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (id int);\n\nCREATE INDEX ix ON a (id);\n")
	want := []string{"CREATE TABLE a (id int)", "CREATE INDEX ix ON a (id)"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitStatements() = %q, want %q", got, want)
	}
}

func TestMigrationFilesAreComplete(t *testing.T) {
	executor, err := NewMigrationExecutor(nil, "../../migrations", nil)

	if err != nil {
		t.Fatalf("NewMigrationExecutor() error = %v", err)
	}

	for number := 1; number <= 2; number++ {
		for _, reverse := range []bool{false, true} {
			if _, ok := executor.find(number, reverse); !ok {
				t.Errorf("missing migration %d (reverse = %v)", number, reverse)
			}
		}
	}
}
