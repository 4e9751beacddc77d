package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v4"
	"go.uber.org/zap"
)

// migrationFile is a numbered SQL file in the migrations directory.
//
// "002_summary_day_key.sql" moves to migration 2 and
// "002_summary_day_key_reverse.sql" moves back from it.
type migrationFile struct {
	number  int
	reverse bool
	name    string
}

func parseMigrationFile(name string) (migrationFile, bool) {
	if filepath.Ext(name) != ".sql" {
		return migrationFile{}, false
	}

	splitList := strings.Split(name, "_")
	number, err := strconv.Atoi(splitList[0])

	if err != nil || number <= 0 {
		return migrationFile{}, false
	}

	return migrationFile{
		number:  number,
		reverse: splitList[len(splitList)-1] == "reverse.sql",
		name:    name,
	}, true
}

// splitStatements splits a migration file into statements.
//
// NOTE: SQL functions in migration files won't work.
func splitStatements(contents string) []string {
	statementList := make([]string, 0, 8)

	for _, statement := range strings.Split(contents, ";\n") {
		if statement = strings.TrimSpace(statement); statement != "" {
			statementList = append(statementList, statement)
		}
	}

	return statementList
}

type MigrationExecutor struct {
	connection    *pgx.Conn
	directoryName string
	fileList      []migrationFile
	log           *zap.Logger
}

func NewMigrationExecutor(connection *pgx.Conn, directoryName string, log *zap.Logger) (*MigrationExecutor, error) {
	entryList, err := os.ReadDir(directoryName)

	if err != nil {
		return nil, err
	}

	fileList := make([]migrationFile, 0, len(entryList))

	for _, entry := range entryList {
		if entry.IsDir() {
			continue
		}

		if file, ok := parseMigrationFile(entry.Name()); ok {
			fileList = append(fileList, file)
		}
	}

	sort.Slice(fileList, func(i, j int) bool {
		return fileList[i].number < fileList[j].number
	})

	return &MigrationExecutor{connection, directoryName, fileList, log}, nil
}

func (executor *MigrationExecutor) CreateMigrationTable(ctx context.Context) error {
	_, err := executor.connection.Exec(
		ctx,
		"CREATE TABLE IF NOT EXISTS fxwave_migration (id serial, migration_number integer NOT NULL UNIQUE);",
	)

	return err
}

func (executor *MigrationExecutor) CurrentMigration(ctx context.Context) (int, error) {
	row := executor.connection.QueryRow(
		ctx,
		"SELECT COALESCE(MAX(migration_number), 0) FROM fxwave_migration;",
	)

	var migrationNumber int32
	err := row.Scan(&migrationNumber)

	return int(migrationNumber), err
}

func (executor *MigrationExecutor) find(migrationNumber int, reverse bool) (migrationFile, bool) {
	for _, file := range executor.fileList {
		if file.number == migrationNumber && file.reverse == reverse {
			return file, true
		}
	}

	return migrationFile{}, false
}

// applyMigration runs one migration file in a transaction, returning false
// when there is no file for the step.
func (executor *MigrationExecutor) applyMigration(ctx context.Context, migrationNumber int, reverse bool) (bool, error) {
	file, ok := executor.find(migrationNumber, reverse)

	if !ok {
		return false, nil
	}

	executor.log.Info("applying migration", zap.String("file", file.name), zap.Bool("reverse", reverse))

	contents, err := os.ReadFile(filepath.Join(executor.directoryName, file.name))

	if err != nil {
		return false, err
	}

	batch := &pgx.Batch{}
	statementList := splitStatements(string(contents))

	for _, statement := range statementList {
		batch.Queue(statement)
	}

	if reverse {
		batch.Queue("DELETE FROM fxwave_migration WHERE migration_number = $1;", migrationNumber)
	} else {
		batch.Queue(
			"INSERT INTO fxwave_migration (migration_number) VALUES ($1) ON CONFLICT DO NOTHING;",
			migrationNumber,
		)
	}

	tx, err := executor.connection.Begin(ctx)

	if err != nil {
		return false, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	results := tx.SendBatch(ctx, batch)

	for i, n := 0, batch.Len(); i < n; i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()

			return false, err
		}
	}

	if err := results.Close(); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

// ApplyMigrations moves the database forwards or backwards to the selected
// migration, stopping early if a file is missing.
func (executor *MigrationExecutor) ApplyMigrations(ctx context.Context, selectedMigrationNumber int) error {
	if err := executor.CreateMigrationTable(ctx); err != nil {
		return err
	}

	current, err := executor.CurrentMigration(ctx)

	if err != nil {
		return err
	}

	for current < selectedMigrationNumber {
		applied, err := executor.applyMigration(ctx, current+1, false)

		if err != nil || !applied {
			return err
		}

		current += 1
	}

	for current > selectedMigrationNumber {
		applied, err := executor.applyMigration(ctx, current, true)

		if err != nil || !applied {
			return err
		}

		current -= 1
	}

	return nil
}
