package files_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/memberhub/internal/app/features/files"
	"github.com/dalemusser/memberhub/internal/app/system/blobstore"
	"go.uber.org/zap"
)

var key = []byte("files-test-signing-key-0123456789abc")

func TestServe(t *testing.T) {
	store, err := blobstore.NewLocal(t.TempDir(), "/files", key)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	ctx := context.Background()
	if err := store.Put(ctx, "uploads/photo-1.png", strings.NewReader("png-bytes"), nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	url, err := store.PresignedURL(ctx, "uploads/photo-1.png", &blobstore.PresignOptions{Expires: time.Minute})
	if err != nil {
		t.Fatalf("PresignedURL failed: %v", err)
	}
	missing, err := store.PresignedURL(ctx, "uploads/gone.png", nil)
	if err != nil {
		t.Fatalf("PresignedURL failed: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/files/", http.StripPrefix("/files", files.Routes(files.NewHandler(store, zap.NewNop()))))

	tests := []struct {
		name string
		path string
		want int
		body string
	}{
		{"valid token", url, http.StatusOK, "png-bytes"},
		{"forged token", "/files/not-a-token", http.StatusNotFound, ""},
		{"deleted file", missing, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}
