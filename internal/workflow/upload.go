package workflow

import (
	"fmt"
	"io"
)

// Upload carries a received document payload together with the metadata the
// transport layer knows about it. Size must reflect the true payload length;
// multipart handlers obtain it from the part header before streaming.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

func (s *Service) validateUpload(up Upload) error {
	if up.Content == nil || up.Size == 0 {
		return Wrap(ErrInvalidUpload, up.FileName, "", "empty file", nil)
	}
	if up.Size < 0 {
		return Wrap(ErrInvalidUpload, up.FileName, "", "unknown file size", nil)
	}
	if max := s.cfg.MaxUploadBytes(); up.Size > max {
		return Wrap(ErrInvalidUpload, up.FileName, "", fmt.Sprintf("file size %d exceeds limit %d", up.Size, max), nil)
	}
	if !s.cfg.ContentTypeAllowed(up.ContentType) {
		return Wrap(ErrInvalidUpload, up.FileName, "", fmt.Sprintf("content type %q not allowed", up.ContentType), nil)
	}
	return nil
}
