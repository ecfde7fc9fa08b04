package cloud

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// Multipart holds a rendered multipart/form-data body, ready to be
// attached to a Request.
type Multipart struct {
	Body        *bytes.Buffer
	ContentType string
}

// NewMultipartUpload renders one file under the given part name, plus
// any number of plain form fields, into a multipart body. Field order
// is caller-controlled via the fields slice of pairs.
func NewMultipartUpload(partName, filename string, fields [][2]string) (*Multipart, error) {
	source, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for _, field := range fields {
		err = writer.WriteField(field[0], field[1])
		if err != nil {
			return nil, fmt.Errorf("writing field %q failed, reason: %w", field[0], err)
		}
	}
	sink, err := writer.CreateFormFile(partName, filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	_, err = io.Copy(sink, source)
	if err != nil {
		return nil, fmt.Errorf("reading %q failed, reason: %w", filename, err)
	}
	err = writer.Close()
	if err != nil {
		return nil, err
	}
	return &Multipart{
		Body:        body,
		ContentType: writer.FormDataContentType(),
	}, nil
}
