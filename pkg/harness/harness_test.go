package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInline_Nesting(t *testing.T) {
	var order []string
	ok := Inline{}.Run("Test Case 1", func(h Harness) bool {
		order = append(order, "1")
		return h.Run("Test Case 1.1", func(Harness) bool {
			order = append(order, "1.1")
			return true
		})
	})

	assert.True(t, ok)
	assert.Equal(t, []string{"1", "1.1"}, order)
}

func TestTesting_RegistersSubtests(t *testing.T) {
	var names []string
	ok := Testing(t).Run("Test Case 1", func(h Harness) bool {
		names = append(names, t.Name())
		return h.Run("Test Case 1.1", func(Harness) bool { return true })
	})

	assert.True(t, ok)
	assert.Len(t, names, 1)
}
