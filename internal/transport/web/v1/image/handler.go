package image

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/transport/web/logx"
	"github.com/EgorLis/my-books/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-books/internal/transport/web/v1"
)

// Handler отдаёт обложки из хранилища (диск или S3)
type Handler struct {
	Log     *log.Logger
	Storage domain.BlobStorage
}

// Get godoc
// @Summary     Cover image
// @Tags        images
// @Produce     jpeg
// @Param       name path string true "stored image name"
// @Success     200 {file}   binary
// @Failure     404 {object} domain.APIEnvelope
// @Router      /images/{name} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "images.get"
	reqID := mw.RequestIDFromCtx(r.Context())
	name := r.PathValue("name")

	rc, info, err := h.Storage.Open(r.Context(), name)
	if err != nil {
		logx.Error(h.Log, reqID, op, "open failed", err, "name", name)
		v1.WriteDomainError(w, r, err)
		return
	}
	defer rc.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if info.ETag != "" {
		w.Header().Set("ETag", `"`+info.ETag+`"`)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")

	// ServeContent умеет Range и If-Modified-Since
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, info.ModTime, rs)
		return
	}

	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		logx.Error(h.Log, reqID, op, "copy failed", err, "name", name)
	}
}
