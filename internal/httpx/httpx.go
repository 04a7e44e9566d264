package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

func DecodeJSON(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

func ValidationDetails(errs validator.ValidationErrors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		details[err.Field()] = err.Tag()
	}
	return details
}

// ParsePageSize reads 1-based "page" and "size" query parameters and returns
// the corresponding skip/limit pair for the store query.
func ParsePageSize(values url.Values, defaultSize, maxSize int64) (skip, limit int64, err error) {
	page := int64(1)
	size := defaultSize

	rawPage := strings.TrimSpace(values.Get("page"))
	if rawPage != "" {
		parsed, err := strconv.ParseInt(rawPage, 10, 64)
		if err != nil || parsed <= 0 {
			return 0, 0, errors.New("invalid page")
		}
		page = parsed
	}

	rawSize := strings.TrimSpace(values.Get("size"))
	if rawSize != "" {
		parsed, err := strconv.ParseInt(rawSize, 10, 64)
		if err != nil || parsed <= 0 {
			return 0, 0, errors.New("invalid size")
		}
		size = parsed
	}

	if size > maxSize {
		size = maxSize
	}

	return (page - 1) * size, size, nil
}
