package preview

const (
	// cellPixels maps one terminal column onto the pixel geometry the
	// carousel works in, putting the breakpoint at 96 columns.
	cellPixels = 8

	stripMargin = 2
	stripTop    = 3 // header, subtitle and a spacer
	cardHeight  = 5
)
