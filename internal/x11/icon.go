package x11

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/BurntSushi/xgbutil/ewmh"
)

// LoadIcon decodes a PNG file into a _NET_WM_ICON entry.
func LoadIcon(path string) (ewmh.WmIcon, error) {
	f, err := os.Open(path)
	if err != nil {
		return ewmh.WmIcon{}, fmt.Errorf("failed to open icon: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return ewmh.WmIcon{}, fmt.Errorf("failed to decode icon %s: %w", path, err)
	}
	return iconFromImage(img), nil
}

// iconFromImage packs pixels as ARGB cardinals, row-major.
func iconFromImage(img image.Image) ewmh.WmIcon {
	b := img.Bounds()
	data := make([]uint, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			data = append(data, uint(a>>8)<<24|uint(r>>8)<<16|uint(g>>8)<<8|uint(bl>>8))
		}
	}
	return ewmh.WmIcon{
		Width:  uint(b.Dx()),
		Height: uint(b.Dy()),
		Data:   data,
	}
}

// SetIcon sets the window's _NET_WM_ICON.
func (s *Surface) SetIcon(icon ewmh.WmIcon) error {
	if err := ewmh.WmIconSet(s.conn.XUtil, s.win.Id, []ewmh.WmIcon{icon}); err != nil {
		return fmt.Errorf("failed to set _NET_WM_ICON: %w", err)
	}
	return nil
}
