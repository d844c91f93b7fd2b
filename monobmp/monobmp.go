// Package monobmp encodes and decodes minimal 1 bit-per-pixel bitmap files.
//
// The format is an uncompressed BMP with a BITMAPINFOHEADER and a two entry
// palette (index 0 black, index 1 white):
//
//	offset  size  field
//	0       2     magic "BM"
//	2       4     file size
//	6       4     reserved (0)
//	10      4     pixel data offset (62)
//	14      4     info header size (40)
//	18      4     width
//	22      4     height (negative: top-down rows, positive: bottom-up rows)
//	26      2     planes (1)
//	28      2     bits per pixel (1)
//	30      4     compression (0)
//	34      4     image size (stride * height)
//	38      8     horizontal/vertical resolution (0)
//	46      4     colors used (2)
//	50      4     important colors (0)
//	54      8     palette: black, white (B, G, R, 0)
//	62      ...   pixel rows, stride = ceil(width/32)*4
//
// Pixels are thresholded with image1bit.BitModel. The output of Encode for a
// W×H image is always exactly HeaderSize + image1bit.Stride(W)*H bytes.
package monobmp

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/flavioheleno/zonerender/image1bit"
)

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
	paletteSize    = 8

	// HeaderSize is the size of all headers preceding the pixel data.
	HeaderSize = fileHeaderSize + infoHeaderSize + paletteSize

	// MaxDimension bounds the width and height accepted by Decode.
	MaxDimension = 1 << 15
)

// ErrFormat is returned by Decode for input that is not a 1-bit bitmap
// produced in the layout above.
var ErrFormat = errors.New("monobmp: unsupported bitmap format")

// Options controls encoding.
type Options struct {
	// BottomUp writes rows bottom to top with a positive height, for readers
	// that do not understand top-down bitmaps. The default is top-down.
	BottomUp bool
}

// Size returns the encoded size of a w×h image.
func Size(w, h int) int {
	if w <= 0 || h <= 0 {
		return HeaderSize
	}
	return HeaderSize + image1bit.Stride(w)*h
}

// Encode thresholds img and returns it as a top-down monochrome bitmap.
func Encode(img image.Image) []byte {
	return EncodeBitmap(image1bit.FromImage(img), nil)
}

// EncodeSized is like Encode but panics when img is not exactly w×h. It is
// used where the caller has declared the dimensions up front and a mismatch
// would produce a header that disagrees with the pixel payload.
func EncodeSized(img image.Image, w, h int) []byte {
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		panic(fmt.Sprintf("monobmp: image is %dx%d, declared %dx%d", b.Dx(), b.Dy(), w, h))
	}
	return Encode(img)
}

// EncodeBitmap serializes an already thresholded bitmap.
func EncodeBitmap(m *image1bit.Bitmap, opts *Options) []byte {
	if opts == nil {
		opts = &Options{}
	}
	w, h := m.Rect.Dx(), m.Rect.Dy()
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	stride := image1bit.Stride(w)
	buf := make([]byte, Size(w, h))
	writeHeader(buf, w, h, stride, opts.BottomUp)

	pix := buf[HeaderSize:]
	for y := 0; y < h; y++ {
		dst := y
		if opts.BottomUp {
			dst = h - 1 - y
		}
		copy(pix[dst*stride:(dst+1)*stride], m.Pix[y*m.Stride:y*m.Stride+stride])
	}
	return buf
}

// EncodeTo thresholds img and writes it to w.
func EncodeTo(w io.Writer, img image.Image, opts *Options) error {
	if _, err := w.Write(EncodeBitmap(image1bit.FromImage(img), opts)); err != nil {
		return fmt.Errorf("monobmp: write: %w", err)
	}
	return nil
}

func writeHeader(buf []byte, w, h, stride int, bottomUp bool) {
	le := binary.LittleEndian

	// File header
	buf[0], buf[1] = 'B', 'M'
	le.PutUint32(buf[2:], uint32(len(buf)))
	le.PutUint32(buf[10:], HeaderSize)

	// Info header
	info := buf[fileHeaderSize:]
	le.PutUint32(info[0:], infoHeaderSize)
	le.PutUint32(info[4:], uint32(int32(w)))
	height := int32(-h)
	if bottomUp {
		height = int32(h)
	}
	le.PutUint32(info[8:], uint32(height))
	le.PutUint16(info[12:], 1)
	le.PutUint16(info[14:], 1)
	le.PutUint32(info[16:], 0)
	le.PutUint32(info[20:], uint32(stride*h))
	le.PutUint32(info[32:], 2)

	// Palette: index 0 black, index 1 white.
	pal := buf[fileHeaderSize+infoHeaderSize:]
	copy(pal, []byte{0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0x00})
}

// Decode reads a monochrome bitmap. Both row orders are accepted; palette
// entries are thresholded so inverted palettes decode correctly.
func Decode(r io.Reader) (*image1bit.Bitmap, error) {
	br := bufio.NewReader(r)
	hdr := make([]byte, HeaderSize)
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, fmt.Errorf("monobmp: read header: %w", err)
	}
	cfg, err := parseHeader(hdr)
	if err != nil {
		return nil, err
	}
	if cfg.offset > HeaderSize {
		if _, err := io.CopyN(io.Discard, br, int64(cfg.offset-HeaderSize)); err != nil {
			return nil, fmt.Errorf("monobmp: skip to pixel data: %w", err)
		}
	}

	m := image1bit.NewBitmap(image.Rect(0, 0, cfg.width, cfg.height))
	row := make([]byte, m.Stride)
	for i := 0; i < cfg.height; i++ {
		if _, err := io.ReadFull(br, row); err != nil {
			return nil, fmt.Errorf("monobmp: read row %d: %w", i, err)
		}
		y := i
		if cfg.bottomUp {
			y = cfg.height - 1 - i
		}
		dst := m.Pix[y*m.Stride : (y+1)*m.Stride]
		for j, b := range row {
			switch {
			case cfg.white0 && cfg.white1:
				dst[j] = 0xFF
			case !cfg.white0 && !cfg.white1:
				dst[j] = 0
			case cfg.white1:
				dst[j] = b
			default:
				dst[j] = ^b
			}
		}
		clearPadding(dst, cfg.width)
	}
	return m, nil
}

// DecodeConfig returns the dimensions without reading pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	hdr := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return image.Config{}, fmt.Errorf("monobmp: read header: %w", err)
	}
	cfg, err := parseHeader(hdr)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: image1bit.BitModel, Width: cfg.width, Height: cfg.height}, nil
}

type header struct {
	width, height  int
	offset         int
	bottomUp       bool
	white0, white1 bool
}

func parseHeader(hdr []byte) (header, error) {
	le := binary.LittleEndian
	if hdr[0] != 'B' || hdr[1] != 'M' {
		return header{}, ErrFormat
	}
	info := hdr[fileHeaderSize:]
	// Larger info headers move the palette; only the minimal layout is supported.
	if le.Uint32(info[0:]) != infoHeaderSize {
		return header{}, ErrFormat
	}
	if le.Uint16(info[12:]) != 1 || le.Uint16(info[14:]) != 1 || le.Uint32(info[16:]) != 0 {
		return header{}, ErrFormat
	}
	h := header{
		width:  int(int32(le.Uint32(info[4:]))),
		height: int(int32(le.Uint32(info[8:]))),
		offset: int(le.Uint32(hdr[10:])),
	}
	if h.width < 0 || h.offset < HeaderSize {
		return header{}, ErrFormat
	}
	if h.height < 0 {
		h.height = -h.height
	} else {
		h.bottomUp = true
	}
	if h.width > MaxDimension || h.height > MaxDimension {
		return header{}, ErrFormat
	}
	// A zero image size is allowed for uncompressed bitmaps.
	if size := int(le.Uint32(info[20:])); size != 0 && size != image1bit.Stride(h.width)*h.height {
		return header{}, ErrFormat
	}
	pal := hdr[fileHeaderSize+infoHeaderSize:]
	h.white0 = image1bit.IsWhite(pal[2], pal[1], pal[0])
	h.white1 = image1bit.IsWhite(pal[6], pal[5], pal[4])
	return h, nil
}

// clearPadding zeroes the bits past width in the last meaningful byte and
// all bytes after it, so decoded bitmaps compare equal to encoded ones.
func clearPadding(row []byte, width int) {
	n := (width + 7) / 8
	if rem := width % 8; rem != 0 && n > 0 {
		row[n-1] &= byte(0xFF) << uint(8-rem)
	}
	for i := n; i < len(row); i++ {
		row[i] = 0
	}
}
