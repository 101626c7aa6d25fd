// Package imaging crops and encodes page rasters.
package imaging

import (
	"fmt"

	"github.com/spherical/pdf-scanner/internal/domain"
)

// Layout anchors the signature region to the bottom edge of the page. The
// region is recomputed for every raster so it follows the page's actual size.
type Layout struct {
	BottomMargin int // distance from the bottom edge to the region's top
	Height       int
	LeftMargin   int
	RightMargin  int
}

// RegionFor computes the region for a width x height raster. The result is
// not validated; Crop rejects regions that do not fit.
func (l Layout) RegionFor(width, height int) domain.Region {
	return domain.Region{
		X:      l.LeftMargin,
		Y:      height - l.BottomMargin,
		Width:  width - l.LeftMargin - l.RightMargin,
		Height: l.Height,
	}
}

// Cropper cuts the Layout's region out of page rasters.
type Cropper struct {
	layout Layout
}

// NewCropper creates a cropper for layout.
func NewCropper(layout Layout) *Cropper {
	return &Cropper{layout: layout}
}

// Crop cuts the layout's region out of img.
func (c *Cropper) Crop(img *domain.RasterImage) (*domain.RasterImage, domain.Region, error) {
	if img == nil {
		return nil, domain.Region{}, domain.RegionOutOfBounds("no raster to crop")
	}
	region := c.layout.RegionFor(img.Width, img.Height)
	out, err := Crop(img, region)
	return out, region, err
}

// Crop copies region out of img into a new raster. It fails with a
// region-out-of-bounds error instead of reading outside the pixel buffer.
func Crop(img *domain.RasterImage, region domain.Region) (*domain.RasterImage, error) {
	if img == nil {
		return nil, domain.RegionOutOfBounds("no raster to crop")
	}
	if !region.Within(img.Width, img.Height) {
		return nil, domain.RegionOutOfBounds(
			fmt.Sprintf("region %s does not fit a %dx%d raster", region, img.Width, img.Height))
	}
	if img.Stride < img.Width*domain.RasterChannels ||
		len(img.Pix) < (img.Height-1)*img.Stride+img.Width*domain.RasterChannels {
		return nil, domain.RegionOutOfBounds(
			fmt.Sprintf("raster buffer of %d bytes is too short for %dx%d", len(img.Pix), img.Width, img.Height))
	}

	rowBytes := region.Width * domain.RasterChannels
	pix := make([]uint8, rowBytes*region.Height)
	for row := 0; row < region.Height; row++ {
		src := (region.Y+row)*img.Stride + region.X*domain.RasterChannels
		copy(pix[row*rowBytes:(row+1)*rowBytes], img.Pix[src:src+rowBytes])
	}

	return &domain.RasterImage{
		Width:  region.Width,
		Height: region.Height,
		Stride: rowBytes,
		Pix:    pix,
	}, nil
}
