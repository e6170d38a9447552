package model

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// PendingUpload is a candidate document selected by the user.
type PendingUpload struct {
	Filename  string
	MimeType  string
	SizeBytes int64
	Data      io.Reader
}

// OpenUpload opens path as a PendingUpload. The MIME type is declared from
// the file extension. The caller must close the returned file.
func OpenUpload(path string) (PendingUpload, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return PendingUpload{}, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return PendingUpload{}, nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return PendingUpload{
		Filename:  filepath.Base(path),
		MimeType:  mimeType,
		SizeBytes: info.Size(),
		Data:      f,
	}, f, nil
}
