package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/bundle-chat/internal/chat"
	"github.com/suPer8Hu/bundle-chat/internal/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxUploadFileSize = 5 << 20

func readUpload(fh *multipart.FileHeader) (chat.File, error) {
	if fh.Size > maxUploadFileSize {
		return chat.File{}, fmt.Errorf("%s is larger than %d bytes", fh.Filename, maxUploadFileSize)
	}
	f, err := fh.Open()
	if err != nil {
		return chat.File{}, err
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, maxUploadFileSize+1))
	if err != nil {
		return chat.File{}, err
	}
	return chat.File{Name: fh.Filename, Content: b}, nil
}

// UploadDocuments takes multipart "files" (.txt only) and adds them to the
// chat as reference material for later replies.
func (h *Handler) UploadDocuments(c *gin.Context) {
	id := c.Param("id")

	form, err := c.MultipartForm()
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "multipart form required")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		common.Fail(c, http.StatusBadRequest, 10005, "no files")
		return
	}

	files := make([]chat.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readUpload(fh)
		if err != nil {
			common.Fail(c, http.StatusBadRequest, 10006, err.Error())
			return
		}
		files = append(files, f)
	}

	n, err := h.ChatSvc.AddDocuments(c.Request.Context(), id, files)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			common.Fail(c, http.StatusNotFound, 40404, "chat not found")
		case errors.Is(err, chat.ErrUnsupportedFileType):
			common.Fail(c, http.StatusBadRequest, 10007, "Unsupported file type")
		case errors.Is(err, chat.ErrInvalidConversationID):
			common.Fail(c, http.StatusBadRequest, 10003, err.Error())
		default:
			h.Log.Error("upload failed", zap.String("conversation_id", id), zap.Error(err))
			common.Fail(c, http.StatusInternalServerError, 50004, "failed to add documents")
		}
		return
	}

	h.Log.Info("documents added", zap.String("conversation_id", id), zap.Int("files", len(files)), zap.Int("chunks", n))
	c.JSON(http.StatusOK, gin.H{"message": "Documents added successfully"})
}
