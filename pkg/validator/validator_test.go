package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	valid := []string{"a@b.co", "jane.doe+shop@example.com"}
	for _, e := range valid {
		assert.NoError(t, Email(e), e)
	}

	invalid := []string{"", "ab", "no-at-sign.com", "a@b", "a b@c.com", strings.Repeat("a", 250) + "@x.com"}
	for _, e := range invalid {
		assert.Error(t, Email(e), e)
	}
}

func TestName(t *testing.T) {
	assert.NoError(t, Name("Jane Doe"))
	assert.Error(t, Name("   "))
	assert.Error(t, Name(strings.Repeat("x", maxNameLength+1)))
	assert.Error(t, Name("bad\x00name"))
}
