package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveDuplicateStrings(t *testing.T) {
	result := RemoveDuplicateStrings([]string{"Aarau", "", "Lenzburg", "Aarau", "Muhen"}, []string{"Muhen"})

	assert.Equal(t, []string{"Aarau", "Lenzburg"}, result)
}

func TestInPlaceFilter(t *testing.T) {
	transfers := []int{0, 1, 0, 2}

	InPlaceFilter(&transfers, func(count int) bool {
		return count == 0
	})

	assert.Equal(t, []int{0, 0}, transfers)
}

func TestEnvironmentOrDefault(t *testing.T) {
	t.Setenv("PENDLER_TEST_VALUE", "set")

	env := GetEnvironmentVariables()

	assert.Equal(t, "set", EnvironmentOrDefault(env, "PENDLER_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", EnvironmentOrDefault(env, "PENDLER_TEST_MISSING", "fallback"))
}
