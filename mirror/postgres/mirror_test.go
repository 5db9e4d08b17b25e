package postgres

import (
	"testing"

	"github.com/mstgnz/filesql/coltype"
	"github.com/mstgnz/filesql/value"
	"github.com/stretchr/testify/assert"
)

func TestDDLType(t *testing.T) {
	assert.Equal(t, "INTEGER", ddlType(coltype.NewFixed(coltype.Int)))
	assert.Equal(t, "REAL", ddlType(coltype.NewFixed(coltype.Float)))
	assert.Equal(t, "VARCHAR(10)", ddlType(coltype.NewSized(coltype.Varchar, 10)))
	assert.Equal(t, "CHAR(5)", ddlType(coltype.NewSized(coltype.Char, 5)))
}

func TestToArg(t *testing.T) {
	assert.Nil(t, toArg(value.NewNull()))
	assert.Equal(t, int32(7), toArg(value.NewInteger(7)))
	assert.Equal(t, float32(1.5), toArg(value.NewFloat(1.5)))
	assert.Equal(t, "hi", toArg(value.NewString("hi")))
}
