package database

import (
	"strings"
	"testing"
)

func TestDialects(t *testing.T) {
	tests := []struct {
		name         string
		dialect      Dialect
		driver       string
		subdir       string
		lastInsertID bool
	}{
		{"sqlite", NewSQLiteDialect(), "sqlite3", "sqlite", true},
		{"postgres", NewPostgresDialect(), "postgres", "postgres", false},
		{"mysql", NewMySQLDialect(), "mysql", "mysql", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %v, want %v", got, tt.driver)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.subdir {
				t.Errorf("MigrationsSubdir() = %v, want %v", got, tt.subdir)
			}
			if got := tt.dialect.SupportsLastInsertId(); got != tt.lastInsertID {
				t.Errorf("SupportsLastInsertId() = %v, want %v", got, tt.lastInsertID)
			}
			if n := strings.Count(tt.dialect.UpsertConfig(), "?"); n != 4 {
				t.Errorf("UpsertConfig() has %d placeholders, want 4", n)
			}
		})
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		dbType  string
		driver  string
		wantErr bool
	}{
		{"", "sqlite3", false},
		{"SQLite", "sqlite3", false},
		{"postgresql", "postgres", false},
		{"mysql", "mysql", false},
		{"oracle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			d, _, err := DialectFor(tt.dbType, "app.db", "postgres://localhost/app")
			if (err != nil) != tt.wantErr {
				t.Fatalf("DialectFor(%q) error = %v, wantErr %v", tt.dbType, err, tt.wantErr)
			}
			if err == nil && d.DriverName() != tt.driver {
				t.Errorf("DriverName() = %v, want %v", d.DriverName(), tt.driver)
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM exercises WHERE level = ?",
			expected: "SELECT * FROM exercises WHERE level = ?",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "SELECT COUNT(*) FROM daily_rankings WHERE level = ? AND created_at >= ? AND score > ?",
			expected: "SELECT COUNT(*) FROM daily_rankings WHERE level = $1 AND created_at >= $2 AND score > $3",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE topics SET title = ? WHERE id = ?",
			expected: "UPDATE topics SET title = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.dialect.RewriteQuery(tt.query); result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	content := `-- header
CREATE TABLE a (id INTEGER);

-- second
INSERT INTO a (id) VALUES
    (1),
    (2);
`
	stmts := splitStatements(content)
	if len(stmts) != 2 {
		t.Fatalf("splitStatements() returned %d statements: %q", len(stmts), stmts)
	}
	if !strings.HasPrefix(stmts[1], "INSERT INTO a") {
		t.Errorf("second statement = %q", stmts[1])
	}
}
