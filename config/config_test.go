package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, "./data", c.DataDir)
	assert.Equal(t, 16, c.DatabaseNameMaxSize)
	assert.Equal(t, 16, c.TableNameMaxLength)
	assert.Equal(t, 16, c.ColumnNameMaxLength)
	assert.Equal(t, 16, c.ColumnMax)
	assert.Equal(t, int64(1), c.AlertThreshold.LockContentions)
}
