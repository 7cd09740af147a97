package domain

// Accepted upload formats: PDF, plain text, and Word documents.
var supportedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"text/plain":      {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/msword": {},
}

// IsSupportedMimeType reports whether a document of the given mime type
// can be ingested.
func IsSupportedMimeType(mimeType string) bool {
	_, ok := supportedMimeTypes[mimeType]
	return ok
}
