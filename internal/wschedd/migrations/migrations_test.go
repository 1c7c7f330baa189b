package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := NewManager(nil, nil).LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "initial schema", migrations[0].Description)
}

func TestSplitStatementsKeepsFunctionBodies(t *testing.T) {
	script := `
CREATE TABLE a (id INT);
CREATE FUNCTION f() RETURNS TRIGGER AS $$
BEGIN
    NEW.x = 1;
    RETURN NEW;
END;
$$ LANGUAGE plpgsql;
DROP TABLE b;
`
	stmts := SplitStatements(script)
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[1], "RETURN NEW;")
	assert.Equal(t, "DROP TABLE b", stmts[2])
}
