package model

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MaxAvatarBytes is the largest avatar image accepted for upload.
const MaxAvatarBytes = 10 << 20

var ErrAvatar = errors.New("invalid avatar")

// CheckAvatar validates an upload by size and by the MIME type sniffed from
// its first bytes. It returns the detected content type.
func CheckAvatar(size int64, head []byte) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("%w: empty file", ErrAvatar)
	}
	if size > MaxAvatarBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds the 10MB limit", ErrAvatar, size)
	}
	ct := http.DetectContentType(head)
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%w: %s is not an image", ErrAvatar, ct)
	}
	return ct, nil
}
