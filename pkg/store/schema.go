package store

import (
	"fmt"
	"strings"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/config"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/models"
)

// Column represents a column definition
type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// column types per driver, indexed like models.Columns
var columnTypes = map[string][]string{
	config.DriverMySQL:  {"INT", "BIGINT", "VARCHAR(255)", "DOUBLE", "DOUBLE", "DOUBLE"},
	config.DriverSQLite: {"INTEGER", "INTEGER", "TEXT", "REAL", "REAL", "REAL"},
	config.DriverProton: {"int64", "int64", "string", "float64", "float64", "float64"},
}

// ReadingSchema returns the readings table definition for a driver
func ReadingSchema(driver string) ([]Column, error) {
	types, ok := columnTypes[driver]
	if !ok {
		return nil, fmt.Errorf("no schema for driver %q", driver)
	}
	schema := make([]Column, len(models.Columns))
	for i, name := range models.Columns {
		schema[i] = Column{
			Name:       name,
			Type:       types[i],
			PrimaryKey: name == models.ColumnID && driver != config.DriverProton,
		}
	}
	return schema, nil
}

// quoteIdent wraps a name in backticks, which MySQL, SQLite and Proton all accept
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func columnList() string {
	quoted := make([]string, len(models.Columns))
	for i, name := range models.Columns {
		quoted[i] = quoteIdent(name)
	}
	return strings.Join(quoted, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// insertQuery builds the parameterised insert for the readings table
func insertQuery(table string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), columnList(), placeholders(len(models.Columns)))
}

// columnDefinitions renders "`name` TYPE [NOT NULL] [PRIMARY KEY]" for each column
func columnDefinitions(schema []Column, notNull bool) string {
	fields := make([]string, len(schema))
	for i, col := range schema {
		def := fmt.Sprintf("%s %s", quoteIdent(col.Name), col.Type)
		if notNull {
			def += " NOT NULL"
		}
		if col.PrimaryKey {
			def += " PRIMARY KEY"
		}
		fields[i] = def
	}
	return strings.Join(fields, ", ")
}
