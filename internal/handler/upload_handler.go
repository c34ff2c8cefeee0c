package handler

import (
	"net/http"

	"lumo/internal/services"
	"lumo/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// UploadHandler accepts guest photo batches. The route is public: the
// token value in the path is the only credential a guest carries.
type UploadHandler struct {
	service     *services.AdmissionService
	maxFileSize int64
}

func NewUploadHandler(service *services.AdmissionService, maxFileSize int64) *UploadHandler {
	return &UploadHandler{service: service, maxFileSize: maxFileSize}
}

// maxBatchFiles bounds the request body cap, not the admission itself;
// token and quota limits apply after parsing.
const maxBatchFiles = 20

// Upload handles POST /uploads/:value. Files arrive as the repeated
// multipart field "photos"; guest_name and guest_message ride alongside.
func (h *UploadHandler) Upload(c *gin.Context) {
	tokenValue := c.Param("value")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize*maxBatchFiles)

	var form httpdto.UploadForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	multipartForm, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid multipart form", "INVALID_REQUEST"))
		return
	}

	fileHeaders := multipartForm.File["photos"]
	files := make([]services.IncomingFile, 0, len(fileHeaders))
	closers := make([]func() error, 0, len(fileHeaders))
	defer func() {
		for _, close := range closers {
			_ = close()
		}
	}()

	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("unreadable file part", "INVALID_REQUEST"))
			return
		}
		closers = append(closers, f.Close)
		files = append(files, services.IncomingFile{
			Filename: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Reader:   f,
		})
	}

	result, err := h.service.Admit(c.Request.Context(), tokenValue, files, services.GuestInfo{
		Name:    form.GuestName,
		Message: form.GuestMessage,
	})
	if err != nil {
		status, code := statusAndCode(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(result))
}
