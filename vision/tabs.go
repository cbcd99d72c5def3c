package vision

import "image"

// TabProbe is a fixed relative coordinate sampled to detect which tab in a
// horizontal tab bar is selected.
type TabProbe struct {
	Point RelCoord
	Name  string
}

// TabPalette names the two colors a tab probe can read as, depending on
// whether that tab is the active one.
type TabPalette struct {
	Dark Color // inactive tab color
	Blue Color // selected tab color
}

// DefaultTabPalette is the palette used by every tab bar in the game unless
// a page overrides it.
var DefaultTabPalette = TabPalette{
	Dark: ColorFromRGB(67, 76, 94),
	Blue: ColorFromRGB(58, 142, 230),
}

const tabColorTolerance = 30

// ActiveTabIndex samples up to five tab probes and returns the index of the
// single probe reading as the "blue" (selected) palette. It returns false
// when zero or more than one probe reads as selected, since a tabbed page
// is only unambiguously identified when exactly one tab is active.
func ActiveTabIndex(screen image.Image, probes []TabProbe, palette TabPalette) (int, bool) {
	active := -1
	count := 0
	for i, p := range probes {
		sampled := GetPixel(screen, p.Point.X, p.Point.Y)
		switch {
		case sampled.Near(palette.Blue, tabColorTolerance):
			active = i
			count++
		case sampled.Near(palette.Dark, tabColorTolerance):
			// inactive, expected
		default:
			// neither palette: not a tabbed page at all
			return -1, false
		}
	}
	if count != 1 {
		return -1, false
	}
	return active, true
}

// IsTabbedPage reports whether screen shows any of the known tabbed pages,
// i.e. exactly one probe reads selected and the rest read inactive.
func IsTabbedPage(screen image.Image, probes []TabProbe, palette TabPalette) bool {
	_, ok := ActiveTabIndex(screen, probes, palette)
	return ok
}

// TabbedPageKind identifies which tabbed page (Map, Build, Intensify,
// Mission, Friend, ...) is showing, by disambiguating with a template match
// once the probe palette has confirmed it's some tabbed page at all.
func TabbedPageKind(screen image.Image, probes []TabProbe, palette TabPalette, kinds map[string]Template, roi ROI, confidence float64) (string, bool) {
	if !IsTabbedPage(screen, probes, palette) {
		return "", false
	}
	for name, tmpl := range kinds {
		if TemplateExists(screen, tmpl, roi, confidence) {
			return name, true
		}
	}
	return "", false
}
