package convert

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// srcEncoding is detected source file encoding.
type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

// srcFormat is detected source file format.
type srcFormat int

const (
	formatUnknown srcFormat = iota
	formatManuscript
	formatMarkdown
)

func (f srcFormat) String() string {
	switch f {
	case formatManuscript:
		return "manuscript"
	case formatMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// manuscriptType is registered with filetype library so we can use its matching
// along with standard types.
var manuscriptType = filetype.NewType("sik", "application/x-manuscript+xml")

func init() {
	filetype.AddMatcher(manuscriptType, func(buf []byte) bool {
		// allow for BOM and xml declaration before the root element
		return bytes.Contains(buf, []byte("<manuscript"))
	})
}

// headLen is how much of the file beginning we read for content sniffing.
const headLen = 512

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF looks at the beginning of the buffer for Unicode byte order marks.
// UTF-32 marks must be checked before UTF-16 ones - UTF-32LE BOM starts with
// UTF-16LE BOM.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	default:
		return encUnknown
	}
}

// stripBOM removes detected byte order mark from the buffer so content
// sniffing could work on the actual text.
func stripBOM(buf []byte, enc srcEncoding) []byte {
	switch enc {
	case encUTF8:
		return buf[3:]
	case encUTF16BigEndian, encUTF16LittleEndian:
		return buf[2:]
	case encUTF32BigEndian, encUTF32LittleEndian:
		return buf[4:]
	default:
		return buf
	}
}

// readHead reads up to headLen bytes from the reader, tolerating short inputs.
func readHead(r io.Reader) ([]byte, error) {
	buf := make([]byte, headLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}

// isArchiveFile checks if file is a zip archive we could look into. Wrong
// extension or malformed content is not an error - file is simply not an
// archive.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf, err := readHead(f)
	if err != nil {
		return false, err
	}
	return filetype.IsType(buf, matchers.TypeZip), nil
}

// classify maps file extension and content head to source format. Manuscript
// files require the root element to be visible in the head unless content is in
// one of UTF-16/32 encodings where cheap sniffing does not work.
func classify(path string, buf []byte) (srcFormat, srcEncoding) {
	enc := detectUTF(buf)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return formatMarkdown, enc
	case ".sik", ".xml":
		if enc == encUTF16BigEndian || enc == encUTF16LittleEndian || enc == encUTF32BigEndian || enc == encUTF32LittleEndian {
			return formatManuscript, enc
		}
		if filetype.IsType(stripBOM(buf, enc), manuscriptType) {
			return formatManuscript, enc
		}
		return formatUnknown, encUnknown
	default:
		return formatUnknown, encUnknown
	}
}

// isBookFile checks if file on disk is a manuscript we could process and
// detects its encoding.
func isBookFile(path string) (srcFormat, srcEncoding, error) {
	f, err := os.Open(path)
	if err != nil {
		return formatUnknown, encUnknown, err
	}
	defer f.Close()

	buf, err := readHead(f)
	if err != nil {
		return formatUnknown, encUnknown, err
	}
	format, enc := classify(path, buf)
	return format, enc, nil
}

// isBookInArchive checks if file inside zip archive is a manuscript we could
// process and detects its encoding.
func isBookInArchive(f *zip.File) (srcFormat, srcEncoding, error) {
	r, err := f.Open()
	if err != nil {
		return formatUnknown, encUnknown, err
	}
	defer r.Close()

	buf, err := readHead(r)
	if err != nil {
		return formatUnknown, encUnknown, err
	}
	format, enc := classify(f.FileHeader.Name, buf)
	return format, enc, nil
}

// selectReader wraps the reader with a decoder for the detected encoding. All
// downstream processing expects UTF-8 without byte order mark.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return unicode.UTF8BOM.NewDecoder().Reader(r)
	case encUTF16BigEndian:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Reader(r)
	case encUTF16LittleEndian:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Reader(r)
	case encUTF32BigEndian:
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewDecoder().Reader(r)
	case encUTF32LittleEndian:
		return utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewDecoder().Reader(r)
	default:
		panic(fmt.Sprintf("unsupported source encoding (%d)", enc))
	}
}
