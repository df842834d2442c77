package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_LookbackHours(t *testing.T) {
	assert.Equal(t, DefaultLookbackHours, Query{}.LookbackHours())
	assert.Equal(t, DefaultLookbackHours, Query{Hours: -4}.LookbackHours())
	assert.Equal(t, 72, Query{Hours: 72}.LookbackHours())
}
