package apiclient

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

type formField struct {
	name  string
	value string
}

type formFile struct {
	field    string
	filename string
	path     string
	r        io.Reader
}

// Form is a multipart/form-data body. Passing a *Form as Request.Data makes
// the client send it as multipart instead of JSON.
type Form struct {
	fields []formField
	files  []formFile
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Set appends a text field. Repeated names are sent as repeated parts.
func (f *Form) Set(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AttachFile adds a file part read from r.
func (f *Form) AttachFile(field, filename string, r io.Reader) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, r: r})
	return f
}

// AttachPath adds a file part read from disk when the form is encoded.
func (f *Form) AttachPath(field, path string) *Form {
	f.files = append(f.files, formFile{field: field, filename: filepath.Base(path), path: path})
	return f
}

// Value returns the first value of a text field.
func (f *Form) Value(name string) (string, bool) {
	for _, fld := range f.fields {
		if fld.name == name {
			return fld.value, true
		}
	}
	return "", false
}

// HasFile reports whether a file part is attached under field.
func (f *Form) HasFile(field string) bool {
	for _, file := range f.files {
		if file.field == field {
			return true
		}
	}
	return false
}

// encode writes the multipart body to w and returns its content type.
func (f *Form) encode(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)

	for _, fld := range f.fields {
		if err := mw.WriteField(fld.name, fld.value); err != nil {
			return "", fmt.Errorf("failed to write field %s: %w", fld.name, err)
		}
	}

	for _, file := range f.files {
		if err := writeFilePart(mw, file); err != nil {
			return "", err
		}
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return mw.FormDataContentType(), nil
}

func writeFilePart(mw *multipart.Writer, file formFile) error {
	src := file.r
	if file.path != "" {
		fh, err := os.Open(file.path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file.path, err)
		}
		defer fh.Close()
		src = fh
	}

	part, err := mw.CreateFormFile(file.field, file.filename)
	if err != nil {
		return fmt.Errorf("failed to create file part %s: %w", file.field, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("failed to copy file %s: %w", file.filename, err)
	}
	return nil
}
