package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSQL(t *testing.T) {
	script := `-- comment; with semicolon
CREATE TABLE a (id INTEGER); -- trailing
INSERT INTO a (name) VALUES ('x;y');

INSERT INTO a (name) VALUES ('it''s')`

	statements := splitSQL(script)
	assert.Len(t, statements, 3)
	assert.Equal(t, "CREATE TABLE a (id INTEGER)", statements[0])
	assert.Equal(t, "INSERT INTO a (name) VALUES ('x;y')", statements[1])
	assert.Equal(t, "INSERT INTO a (name) VALUES ('it''s')", statements[2])
}

func TestShouldApplyMigration(t *testing.T) {
	tests := []struct {
		file, current, target string
		want                  bool
	}{
		{"0.1.1", "0.1.0", "0.1.2", true},
		{"0.1.0", "0.1.0", "0.1.2", false},
		{"0.1.3", "0.1.0", "0.1.2", false},
		{"0.1.1", "", "0.1.1", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shouldApplyMigration(tt.file, tt.current, tt.target), "%+v", tt)
	}
}
