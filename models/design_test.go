package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesignCatalog(t *testing.T) {
	list := Designs()
	require.Len(t, list, TotalDesigns)

	assert.Equal(t, Design{ID: 1, Name: "AAAAA", Image: "/Designs/Combined/AAAAA.png"}, list[0])
	assert.Equal(t, "AAAAB", list[1].Name)
	assert.Equal(t, "ABAAA", list[8].Name)
	assert.Equal(t, "BAAAA", list[16].Name)
	assert.Equal(t, "BBBBB", list[31].Name)

	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Name, list[i].Name, "catalog must be in alphabetical order")
	}
}

func TestDesignLookup(t *testing.T) {
	d, ok := DesignByID(32)
	require.True(t, ok)
	assert.Equal(t, "BBBBB", d.Name)

	for _, id := range []int{0, -1, 33} {
		_, ok := DesignByID(id)
		assert.False(t, ok, "id %d", id)
		assert.Empty(t, DesignName(id))
	}
}

func TestComponents(t *testing.T) {
	list := Components()
	require.Len(t, list, 5)
	assert.Equal(t, "/Designs/Components/Add Button A.png", list[0].ImageA)
	assert.Equal(t, "/Designs/Components/Title B.png", list[4].ImageB)

	assert.True(t, ComponentCheckboxType.Valid())
	assert.False(t, ComponentType("footer").Valid())
	assert.True(t, VariantB.Valid())
	assert.False(t, Variant("C").Valid())
}
