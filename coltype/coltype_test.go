package coltype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"int", NewFixed(Int), "int"},
		{"float", NewFixed(Float), "float"},
		{"varchar", NewSized(Varchar, 16), "varchar(16)"},
		{"char", NewSized(Char, 4), "char(4)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestFixedSizeAlwaysOne(t *testing.T) {
	assert.Equal(t, uint8(1), NewFixed(Int).Size)
	assert.Equal(t, uint8(1), NewFixed(Float).Size)
}
