package imgutil

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// Kind identifies file content by its leading bytes.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindDDS
	KindTIFF
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindDDS:
		return "dds"
	case KindTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// HeaderLen is the number of bytes DetectHeader needs.
const HeaderLen = 8

var (
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	ddsSig    = []byte("DDS ")
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
)

var errShortHeader = errors.New("header too short")

// DetectHeader inspects the first bytes of a file for known signatures.
// TGA has no signature and is reported as KindUnknown.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < len(ddsSig) {
		return KindUnknown, errShortHeader
	}

	switch {
	case bytes.HasPrefix(header, jpegSig):
		return KindJPEG, nil
	case bytes.HasPrefix(header, pngSig):
		return KindPNG, nil
	case bytes.HasPrefix(header, ddsSig):
		return KindDDS, nil
	case bytes.HasPrefix(header, tiffSigLE), bytes.HasPrefix(header, tiffSigBE):
		return KindTIFF, nil
	}
	return KindUnknown, nil
}

// SniffFile reads the head of a file to determine its type.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads up to HeaderLen bytes from r and determines its type.
// Files shorter than HeaderLen are still classified when possible.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, HeaderLen)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUnknown, err
	}

	return DetectHeader(header[:n])
}
