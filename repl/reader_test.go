package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsExitCommand(t *testing.T) {
	assert.True(t, IsExitCommand(".EXIT"))
	assert.True(t, IsExitCommand("  .exit  "))
	assert.False(t, IsExitCommand("SELECT * FROM t;"))
}

func TestIsCommentLine(t *testing.T) {
	assert.True(t, IsCommentLine("-- a comment"))
	assert.True(t, IsCommentLine("  -- indented comment"))
	assert.False(t, IsCommentLine("SELECT 1; -- trailing"))
}

func TestExtractStatementsSplitsOnUnquotedSemicolons(t *testing.T) {
	stmts, remainder := ExtractStatements("CREATE DATABASE db_1;USE db_1;")
	assert.Equal(t, []string{"CREATE DATABASE db_1", "USE db_1"}, stmts)
	assert.Equal(t, "", remainder)
}

func TestExtractStatementsKeepsSemicolonInsideString(t *testing.T) {
	stmts, remainder := ExtractStatements("INSERT INTO t VALUES('a;b');")
	assert.Equal(t, []string{"INSERT INTO t VALUES('a;b')"}, stmts)
	assert.Equal(t, "", remainder)
}

func TestExtractStatementsReturnsRemainder(t *testing.T) {
	stmts, remainder := ExtractStatements("SELECT *\nFROM t\n")
	assert.Empty(t, stmts)
	assert.Equal(t, "SELECT *\nFROM t\n", remainder)
}
