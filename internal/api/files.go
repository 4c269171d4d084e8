package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"agendei/internal/models"

	"github.com/google/uuid"
)

// maxUploadSize caps avatar uploads at 4 MB.
const maxUploadSize = 4 << 20

func (s *HTTPServer) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}

	src, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}
	defer src.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}
	stored := uuid.NewString() + strings.ToLower(filepath.Ext(name))

	if err := os.MkdirAll(s.cfg.Uploads.Dir, 0o755); err != nil {
		s.respondError(w, err)
		return
	}

	dst, err := os.Create(filepath.Join(s.cfg.Uploads.Dir, stored))
	if err != nil {
		s.respondError(w, err)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		s.respondError(w, err)
		return
	}

	file := &models.File{Name: name, Path: stored}
	if err := s.users.AttachAvatar(r.Context(), CallerID(r.Context()), file); err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &avatarView{
		ID:   file.ID,
		Path: file.Path,
		URL:  s.avatarURL(file.Path),
	})
}
