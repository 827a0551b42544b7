package dayview

// Rect is an axis-aligned rectangle in pixels. Right and Bottom are
// exclusive edges, like image.Rectangle.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// NewDirectionalRect builds a Rect from logical start/end edges.
//
// start and end are measured from the left edge in left-to-right mode. When
// rtl is set they are mirrored across parentWidth, so start maps to the right
// edge. top and bottom are never translated.
func NewDirectionalRect(rtl bool, parentWidth, start, top, end, bottom int) Rect {
	if rtl {
		return Rect{Left: parentWidth - end, Top: top, Right: parentWidth - start, Bottom: bottom}
	}
	return Rect{Left: start, Top: top, Right: end, Bottom: bottom}
}

// Width is Right - Left.
func (r Rect) Width() int {
	return r.Right - r.Left
}

// Height is Bottom - Top.
func (r Rect) Height() int {
	return r.Bottom - r.Top
}
