package frontend

import (
	"fmt"

	"github.com/janpfeifer/GifCentration/internal/game"
)

// gifSizeScale is the fraction of the card taken by its GIF.
const gifSizeScale = 0.9

// imgSize holds the CSS sizing of a GIF within its card.
type imgSize struct {
	Width, Height, AspectRatio string
}

// imageSize fits img in its card keeping its proportions: wide GIFs take
// gifSizeScale of the card width, tall ones of its height. With unknown
// dimensions the GIF is boxed in both.
func imageSize(img game.ImageRef) imgSize {
	scaled := fmt.Sprintf("%.0f%%", gifSizeScale*100)
	if img.Width <= 0 || img.Height <= 0 {
		return imgSize{Width: scaled, Height: scaled}
	}
	aspect := fmt.Sprintf("%d / %d", img.Width, img.Height)
	if img.Width >= img.Height {
		return imgSize{Width: scaled, Height: "auto", AspectRatio: aspect}
	}
	return imgSize{Width: "auto", Height: scaled, AspectRatio: aspect}
}
