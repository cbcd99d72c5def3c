package controllers

import (
	"testing"

	"github.com/autowsgr/helmsman/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPixelPagesIdentifiesMainPage(t *testing.T) {
	reg := page.NewRegistry()
	RegisterPixelPages(reg)

	img := signatureImage(1000, 1000, mainSignature.Rules)
	name, ok := reg.GetCurrentPage(img)
	require.True(t, ok)
	assert.Equal(t, page.Main, name)
}

func TestRegisterPixelPagesCoversExpectedNames(t *testing.T) {
	reg := page.NewRegistry()
	RegisterPixelPages(reg)

	names := reg.Names()
	for _, want := range []page.Name{page.Main, page.Sidebar, page.Backyard, page.Bath, page.Canteen} {
		assert.Contains(t, names, want)
	}
}

func TestRegisterPixelPagesDistinguishesSidebarFromBackyard(t *testing.T) {
	reg := page.NewRegistry()
	RegisterPixelPages(reg)

	img := signatureImage(1000, 1000, sidebarSignature.Rules)
	name, ok := reg.GetCurrentPage(img)
	require.True(t, ok)
	assert.Equal(t, page.Sidebar, name)
}
