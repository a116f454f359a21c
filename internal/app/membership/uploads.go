package membership

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/system/blobstore"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Upload is a file received with a request.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// blobKey builds "uploads/<field>-<unix-ms>-<8 hex><ext>".
func (s *Service) blobKey(field, filename string) string {
	return fmt.Sprintf("uploads/%s-%d-%s%s",
		field, s.now().UnixMilli(), uuid.NewString()[:8], cleanExt(filename))
}

// cleanExt keeps a short alphanumeric extension and drops anything else.
func cleanExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// storeUpload writes up to the blob store under a fresh key.
func (s *Service) storeUpload(ctx context.Context, field string, up *Upload) (models.BlobRef, error) {
	key := s.blobKey(field, up.Filename)
	ct := up.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	if err := s.blobs.Put(ctx, key, up.Body, &blobstore.PutOptions{ContentType: ct}); err != nil {
		return "", err
	}
	return models.BlobRef(key), nil
}

// resolveURL signs ref for viewing. Failures are logged and yield "".
func (s *Service) resolveURL(ctx context.Context, field string, ref models.BlobRef) string {
	if ref.IsZero() {
		return ""
	}
	url, err := ref.Resolve(ctx, s.signer, s.opts.SignedURLExpiry)
	if err != nil {
		s.log.Warn("resolve blob url failed",
			zap.String("field", field),
			zap.String("key", ref.Key()),
			zap.Error(err))
		return ""
	}
	return url
}
