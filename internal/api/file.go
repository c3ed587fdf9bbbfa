package api

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// PDFMediaType is the only media type the service accepts.
const PDFMediaType = "application/pdf"

// File is a document selected for upload.
type File struct {
	Content     io.Reader
	Name        string
	ContentType string
}

// MediaType returns the declared content type, falling back to the type
// registered for the file extension.
func (f File) MediaType() string {
	ct := f.ContentType
	if ct == "" {
		ct = mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name)))
	}
	if ct == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mediaType
}

// IsPDF reports whether the declared media type is PDF.
func (f File) IsPDF() bool {
	return f.MediaType() == PDFMediaType
}

// OpenFile opens a local file for upload. The caller closes the returned file.
func OpenFile(path string) (File, io.Closer, error) {
	fh, err := os.Open(filepath.Clean(path))
	if err != nil {
		return File{}, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return File{}, nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		_ = fh.Close()
		return File{}, nil, fmt.Errorf("%s is a directory", path)
	}

	return File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Content:     fh,
	}, fh, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody streams the file as a multipart form with the single field "file".
func (f File) multipartBody() (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(f.Name)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		header.Set("Content-Type", ct)

		part, err := mw.CreatePart(header)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if f.Content != nil {
			if _, err := io.Copy(part, f.Content); err != nil {
				_ = pw.CloseWithError(err)
				return
			}
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	return pr, mw.FormDataContentType()
}
