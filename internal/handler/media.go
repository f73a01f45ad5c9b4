package handler

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"twii/internal/apperror"
	"twii/internal/model"
)

var errInvalidForm = apperror.New(apperror.BadRequest, "Invalid form data")

// isMultipart reports whether the request carries multipart/form-data.
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// parseUploadForm bounds the body and parses the multipart form.
func parseUploadForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxUploadFormBytes)
	if err := r.ParseMultipartForm(model.MaxUploadFormBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			return model.ErrFileTooLarge
		}
		return errInvalidForm
	}
	return nil
}

// imagePart returns the named file part, or nil when it was not sent.
// The caller closes the returned file.
func imagePart(r *http.Request, field string) (*model.ImageUpload, multipart.File, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperror.New(apperror.BadRequest, "Invalid "+field+" upload")
	}

	return &model.ImageUpload{
		Data:        file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, file, nil
}

// formString returns a pointer to the form value, or nil when the field is absent.
func formString(r *http.Request, field string) *string {
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func closeFile(f multipart.File) {
	if f != nil {
		f.Close()
	}
}
