package util

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/concord-chat/concord/internal/constant"
	"github.com/concord-chat/concord/internal/model"
)

const MaxAvatarSize = 2 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/webp": true,
	"image/png":  true,
	"image/jpeg": true,
}

// ValidateImage checks the uploaded file size and sniffs the real content
// type, ignoring whatever the client claimed in the form part.
func ValidateImage(fileHeader *multipart.FileHeader, fieldName string) (*bytes.Reader, int64, error) {
	if fileHeader.Size > MaxAvatarSize {
		return nil, 0, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Image must be at most 2MB",
			Param:   fieldName,
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, 0, err
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return nil, 0, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Image must be webp, png or jpeg",
			Param:   fieldName,
		}
	}

	return bytes.NewReader(data), int64(len(data)), nil
}
