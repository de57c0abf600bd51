package models

// Picture represents an image anchored to a worksheet cell.
type Picture struct {
	// Name is the drawing object name.
	Name string `json:"name"`
	// Cell is the top-left anchor cell (e.g. "D2").
	Cell string `json:"cell"`
	// Col is the anchor column (1-based).
	Col int `json:"col"`
	// Row is the anchor row (1-based).
	Row int `json:"row"`
	// W is the displayed width in pixels.
	W int `json:"w"`
	// H is the displayed height in pixels.
	H int `json:"h"`
}

// SheetPictures maps sheet name to the pictures anchored on it.
type SheetPictures map[string][]Picture
