// Package image1bit provides a packed 1-bit image format for monochrome e-ink panels.
//
// Pixels are stored row-major, 8 pixels per byte, most significant bit first.
// A set bit is white, a cleared bit is black. Every row is padded to a
// multiple of 4 bytes, which is the scanline layout of uncompressed
// 1 bit-per-pixel bitmaps, so Pix can be written to a bitmap file unchanged.
//
// Memory layout example for a 10-pixel row (stride 4):
//
//	Pixels: 0 1 2 3 4 5 6 7 | 8 9
//	Values: W B W W B B B W | W B
//	Bytes:  0xB1              0x80  0x00  0x00
//
// Colors are converted with the ITU-R BT.601 luma weights and a fixed
// threshold: a pixel is white when 0.299·R + 0.587·G + 0.114·B > 128.
//
// Example usage:
//
//	// Create a 800x480 image
//	img := image1bit.NewBitmap(image.Rect(0, 0, 800, 480))
//
//	// Paint everything white
//	draw.Draw(img, img.Bounds(), image.NewUniform(image1bit.On), image.Point{}, draw.Src)
//
//	// Clear a single pixel
//	img.SetBit(10, 20, image1bit.Off)
//
//	// Threshold any image
//	mono := image1bit.FromImage(photo)
package image1bit
