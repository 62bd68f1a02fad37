package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	require.Equal(t, "eagles-youth-football", Slugify("  Eagles Youth  Football "))
	require.Equal(t, "st-mary-s-fc", Slugify("St. Mary's FC"))
	require.Equal(t, "", Slugify("---"))
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("John Smith")
	require.Equal(t, "John", first)
	require.Equal(t, "Smith", last)

	first, last = SplitName("Cher")
	require.Equal(t, "Cher", first)
	require.Equal(t, "", last)

	first, last = SplitName("Mary Jane van Dyke")
	require.Equal(t, "Mary", first)
	require.Equal(t, "Jane van Dyke", last)
}

func TestMatchName(t *testing.T) {
	require.True(t, MatchName("Head  Coach", []string{"coach"}))
	require.False(t, MatchName("Team Manager", []string{"coach"}))
}
