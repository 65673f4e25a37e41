package handlers

import (
	"mime/multipart"
)

// mockStorage records uploads and deletions so handler tests can run without
// a bucket.
type mockStorage struct {
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
}

func (m *mockStorage) UploadProductImage(file multipart.File, filename, contentType string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.uploads = append(m.uploads, filename)
	return "https://storage.googleapis.com/test-bucket/products/" + filename, nil
}

func (m *mockStorage) DeleteFile(objectPath string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletes = append(m.deletes, objectPath)
	return nil
}
