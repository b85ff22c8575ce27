// Package form reads dashboard form posts, which arrive either url-encoded
// or as multipart/form-data.
package form

import (
	"errors"
	"net/http"
)

const maxMemory = 1 << 20

// Parse fills r.PostForm from either encoding.
func Parse(r *http.Request) error {
	err := r.ParseMultipartForm(maxMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}

	return nil
}
