// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	"os"

	// Register the source formats the journals serve images in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/tiff"
)

// ConvertToTIFF decodes the image at srcPath, flattens any alpha
// channel onto a white background, and writes an uncompressed TIFF to
// dstPath with description embedded as the ImageDescription tag.
// Uncompressed TIFF is the archival format the delivery targets expect.
func ConvertToTIFF(srcPath, dstPath, description string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening image %s: %w", srcPath, err)
	}
	img, _, err := image.Decode(src)
	src.Close()
	if err != nil {
		return fmt.Errorf("decoding image %s: %w", srcPath, err)
	}

	flat := withoutAlpha(img)

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dstPath, err)
	}
	encErr := tiff.Encode(out, flat, &tiff.Options{Compression: tiff.Uncompressed})
	closeErr := out.Close()
	if encErr != nil {
		os.Remove(dstPath)
		return fmt.Errorf("encoding TIFF %s: %w", dstPath, encErr)
	}
	if closeErr != nil {
		os.Remove(dstPath)
		return fmt.Errorf("closing %s: %w", dstPath, closeErr)
	}

	if description != "" {
		if err := setTIFFDescription(dstPath, description); err != nil {
			return fmt.Errorf("embedding description in %s: %w", dstPath, err)
		}
	}
	return nil
}

// withoutAlpha composites an image with transparency onto a white
// background, returning an opaque RGBA image.
func withoutAlpha(img image.Image) image.Image {
	if opq, ok := img.(interface{ Opaque() bool }); ok && opq.Opaque() {
		return img
	}
	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)
	return flat
}

const tagImageDescription = 270

// setTIFFDescription rewrites a TIFF file's first IFD to include an
// ImageDescription (tag 270) entry pointing at text appended to the end
// of the file. Existing entries keep their absolute offsets, so only
// the header's IFD pointer changes.
func setTIFFDescription(path, description string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) < 8 {
		return fmt.Errorf("truncated TIFF header")
	}

	var order binary.ByteOrder
	switch string(data[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return fmt.Errorf("not a TIFF file")
	}

	ifdOffset := order.Uint32(data[4:8])
	if int(ifdOffset)+2 > len(data) {
		return fmt.Errorf("IFD offset out of range")
	}
	count := int(order.Uint16(data[ifdOffset : ifdOffset+2]))
	entriesStart := int(ifdOffset) + 2
	entriesEnd := entriesStart + count*12
	if entriesEnd+4 > len(data) {
		return fmt.Errorf("IFD out of range")
	}
	nextIFD := data[entriesEnd : entriesEnd+4]

	// NUL-terminated ASCII value, appended at the end of the file.
	value := append([]byte(description), 0)
	valueOffset := uint32(len(data))

	entry := make([]byte, 12)
	order.PutUint16(entry[0:2], tagImageDescription)
	order.PutUint16(entry[2:4], 2) // ASCII
	order.PutUint32(entry[4:8], uint32(len(value)))
	if len(value) <= 4 {
		copy(entry[8:12], value)
		valueOffset = 0
	} else {
		order.PutUint32(entry[8:12], valueOffset)
	}

	// Rebuild the IFD at the end of the file with the new entry merged
	// in tag order, replacing any existing description.
	type rawEntry struct {
		tag   uint16
		bytes []byte
	}
	var entries []rawEntry
	inserted := false
	for i := 0; i < count; i++ {
		e := data[entriesStart+i*12 : entriesStart+(i+1)*12]
		tag := order.Uint16(e[0:2])
		if tag == tagImageDescription {
			continue
		}
		if !inserted && tag > tagImageDescription {
			entries = append(entries, rawEntry{tagImageDescription, entry})
			inserted = true
		}
		entries = append(entries, rawEntry{tag, e})
	}
	if !inserted {
		entries = append(entries, rawEntry{tagImageDescription, entry})
	}

	out := data
	if valueOffset != 0 {
		out = append(out, value...)
	}
	newIFDOffset := uint32(len(out))
	countBytes := make([]byte, 2)
	order.PutUint16(countBytes, uint16(len(entries)))
	out = append(out, countBytes...)
	for _, e := range entries {
		out = append(out, e.bytes...)
	}
	out = append(out, nextIFD...)
	order.PutUint32(out[4:8], newIFDOffset)

	return os.WriteFile(path, out, 0o644)
}
