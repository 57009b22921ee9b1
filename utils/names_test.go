package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlaceName(t *testing.T) {
	assert.Equal(t, "New York", NormalizePlaceName("  new  YORK "))
	assert.Equal(t, "Paris", NormalizePlaceName("PARIS"))
	assert.Equal(t, "Rio De Janeiro", NormalizePlaceName("rio de janeiro"))
}
