package httpx

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// UploadAPI stores uploaded files under a flat directory with random names.
type UploadAPI struct {
	Dir string
}

const maxUploadBytes = 10 << 20 // 10 MiB

// Upload accepts one multipart file and returns its public URL
func (a *UploadAPI) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	f, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file required", http.StatusBadRequest)
		return
	}
	defer f.Close()

	name := uuid.NewString() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(a.Dir, name))
	if err != nil {
		http.Error(w, "store failed", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, f); err != nil {
		http.Error(w, "store failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"url": "/uploads/" + name})
}
