package constants

import "strings"

// Canonical file types accepted by the extraction dispatcher.
const (
	PDF   = "pdf"
	Image = "image"
	Word  = "word"
	Excel = "excel"
)

// FileTypes holds the allowed declared file types, in dispatch order.
var FileTypes = []string{PDF, Image, Word, Excel}

// NormalizeFileType lowercases and trims a declared file type so dispatch
// is case-insensitive.
func NormalizeFileType(fileType string) string {
	return strings.ToLower(strings.TrimSpace(fileType))
}

// IsSupportedFileType reports whether the declared type maps to an adapter.
func IsSupportedFileType(fileType string) bool {
	n := NormalizeFileType(fileType)
	for _, t := range FileTypes {
		if t == n {
			return true
		}
	}
	return false
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FileTypeForExt maps a file extension to its declared type, "" when the
// extension implies no supported type.
func FileTypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "png", "jpg", "jpeg", "tif", "tiff", "bmp", "webp":
		return Image
	case "doc", "docx":
		return Word
	case "xls", "xlsx":
		return Excel
	}
	return ""
}
