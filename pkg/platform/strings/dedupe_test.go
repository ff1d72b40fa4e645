package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DedupeAndTrimLower(t *testing.T) {
	got := DedupeAndTrimLower([]string{"  GLBITM.AC.IN ", "iitd.ac.in", "Glbitm.ac.in", "", "  "})
	assert.Equal(t, []string{"glbitm.ac.in", "iitd.ac.in"}, got)
}

func Test_DedupeAndTrimLower_EmptyInput(t *testing.T) {
	assert.Empty(t, DedupeAndTrimLower(nil))
	assert.Empty(t, DedupeAndTrimLower([]string{"", "   "}))
}
