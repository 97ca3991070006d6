package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/projecthub-backend/internal/api/middleware"
	"github.com/welldanyogia/projecthub-backend/internal/api/response"
	apperrors "github.com/welldanyogia/projecthub-backend/internal/errors"
	"github.com/welldanyogia/projecthub-backend/internal/logger"
	"github.com/welldanyogia/projecthub-backend/internal/models"
	"github.com/welldanyogia/projecthub-backend/internal/repository"
	"github.com/welldanyogia/projecthub-backend/internal/services"
	"github.com/welldanyogia/projecthub-backend/internal/storage"
	"github.com/welldanyogia/projecthub-backend/internal/validator"
)

// Multipart field names
const (
	fieldSubject     = "subject"
	fieldBody        = "body"
	fieldRecipients  = "recipients"
	fieldAttachments = "attachments"
)

// MailHandler handles the mail HTTP routes
type MailHandler struct {
	mails       services.MailService
	files       storage.FileStorage
	attachments repository.AttachmentRepository
	security    *logger.SecurityLogger
	logger      *slog.Logger
}

// NewMailHandler creates a new MailHandler
func NewMailHandler(
	mails services.MailService,
	files storage.FileStorage,
	attachments repository.AttachmentRepository,
	security *logger.SecurityLogger,
	logger *slog.Logger,
) *MailHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MailHandler{
		mails:       mails,
		files:       files,
		attachments: attachments,
		security:    security,
		logger:      logger,
	}
}

type sendRequest struct {
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Recipients []uint `json:"recipients"`
}

type replyRequest struct {
	Body string `json:"body"`
}

// Send handles POST /api/mails
func (h *MailHandler) Send(c echo.Context) error {
	var req sendRequest
	var attachments []models.Attachment

	if isJSON(c) {
		if err := c.Bind(&req); err != nil {
			return response.BadRequest(c, "invalid request body")
		}
	} else {
		form, err := c.MultipartForm()
		if err != nil {
			return response.BadRequest(c, "invalid multipart form")
		}
		req.Subject = firstValue(form, fieldSubject)
		req.Body = firstValue(form, fieldBody)
		req.Recipients, err = validator.ParseRecipientValues(formValues(form.Value, fieldRecipients))
		if err != nil {
			return response.BadRequest(c, err.Error())
		}
		if attachments, err = h.storeUploads(c, form); err != nil {
			return response.Error(c, err)
		}
	}

	result, err := h.mails.Send(c.Request().Context(), services.SendInput{
		SenderID:     middleware.UserID(c),
		Subject:      validator.SanitizeString(req.Subject, validator.MaxSubjectLength),
		Body:         validator.SanitizeBody(req.Body),
		RecipientIDs: req.Recipients,
		Attachments:  attachments,
	})
	if err != nil {
		h.discard(attachments)
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

// Reply handles POST /api/mails/:id/reply
func (h *MailHandler) Reply(c echo.Context) error {
	parentID, err := validator.ParseID(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid mail ID")
	}

	var req replyRequest
	var attachments []models.Attachment

	if isJSON(c) {
		if err := c.Bind(&req); err != nil {
			return response.BadRequest(c, "invalid request body")
		}
	} else {
		form, err := c.MultipartForm()
		if err != nil {
			return response.BadRequest(c, "invalid multipart form")
		}
		req.Body = firstValue(form, fieldBody)
		if attachments, err = h.storeUploads(c, form); err != nil {
			return response.Error(c, err)
		}
	}

	result, err := h.mails.Reply(c.Request().Context(), services.ReplyInput{
		SenderID:        middleware.UserID(c),
		ParentMessageID: parentID,
		Body:            validator.SanitizeBody(req.Body),
		Attachments:     attachments,
	})
	if err != nil {
		h.discard(attachments)
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

// Inbox handles GET /api/mails/inbox
func (h *MailHandler) Inbox(c echo.Context) error {
	items, err := h.mails.Inbox(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}

// Sent handles GET /api/mails/sent
func (h *MailHandler) Sent(c echo.Context) error {
	items, err := h.mails.Sent(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}

// Get handles GET /api/mails/:id
func (h *MailHandler) Get(c echo.Context) error {
	id, err := validator.ParseID(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid mail ID")
	}

	detail, err := h.mails.ThreadDetail(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, detail)
}

// MarkRead handles PUT /api/mails/:id/read
func (h *MailHandler) MarkRead(c echo.Context) error {
	id, err := validator.ParseID(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid mail ID")
	}

	if err := h.mails.MarkRead(c.Request().Context(), middleware.UserID(c), id); err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, nil, "Mail marked as read")
}

// Delete handles DELETE /api/mails/:id, where id is the thread id
func (h *MailHandler) Delete(c echo.Context) error {
	threadID, err := validator.ParseID(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid thread ID")
	}

	if err := h.mails.DeleteConversation(c.Request().Context(), middleware.UserID(c), threadID); err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, nil, "Conversation deleted")
}

// Suggestions handles GET /api/mails/users/suggestions?q=&limit=
func (h *MailHandler) Suggestions(c echo.Context) error {
	users, err := h.mails.SuggestRecipients(
		c.Request().Context(),
		middleware.UserID(c),
		c.QueryParam("q"),
		validator.ParseLimit(c.QueryParam("limit")),
	)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, users)
}

// AllThreads handles GET /api/mails/admin/all
func (h *MailHandler) AllThreads(c echo.Context) error {
	threads, err := h.mails.AllThreads(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, threads)
}

// Download handles GET /api/mails/attachments/:id/download
func (h *MailHandler) Download(c echo.Context) error {
	id, err := validator.ParseID(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	attachment, err := h.attachments.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to get attachment")
	}

	file, err := h.files.Open(attachment.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return response.NotFound(c, "attachment file not found")
		}
		if errors.Is(err, storage.ErrPathTraversal) {
			h.security.PathTraversalAttempt(c.RealIP(), c.Path(), attachment.FilePath)
		}
		return response.InternalError(c, "failed to retrieve file")
	}
	defer file.Close()

	header := c.Response().Header()
	header.Set(echo.HeaderContentType, attachment.MimeType)
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, validator.SanitizeFilename(attachment.OriginalName)))
	if attachment.FileSize > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(attachment.FileSize, 10))
	}
	c.Response().WriteHeader(http.StatusOK)

	if _, err := io.Copy(c.Response(), file); err != nil {
		h.logger.Warn("attachment download interrupted",
			slog.Uint64("attachment_id", uint64(id)),
			slog.Any("error", err))
	}
	return nil
}

// storeUploads validates every file of the form before writing any of them.
// On error no stored file is left behind.
func (h *MailHandler) storeUploads(c echo.Context, form *multipart.Form) ([]models.Attachment, error) {
	headers := formValues(form.File, fieldAttachments)
	if len(headers) == 0 {
		return nil, nil
	}
	if len(headers) > storage.MaxAttachments {
		return nil, apperrors.Validation(fmt.Sprintf("at most %d attachments are allowed", storage.MaxAttachments))
	}

	for _, fh := range headers {
		if err := storage.ValidateFile(fh.Filename, fh.Size); err != nil {
			return nil, h.blocked(c, fh.Filename, err)
		}
	}

	stored := make([]models.Attachment, 0, len(headers))
	for _, fh := range headers {
		att, err := h.storeOne(fh)
		if err != nil {
			h.discard(stored)
			if errors.Is(err, storage.ErrFileTooLarge) || errors.Is(err, storage.ErrBlockedExt) {
				return nil, h.blocked(c, fh.Filename, err)
			}
			h.logger.Error("failed to store attachment", slog.Any("error", err))
			return nil, apperrors.NewAppError(apperrors.ErrInternal, "failed to store attachment", apperrors.CodeInternalError)
		}
		stored = append(stored, att)
	}
	return stored, nil
}

func (h *MailHandler) blocked(c echo.Context, filename string, reason error) error {
	filename = validator.SanitizeFilename(filename)
	h.security.BlockedFileUpload(c.RealIP(), filename, reason.Error())
	return apperrors.Validation(fmt.Sprintf("%s: %s", filename, reason.Error()))
}

func (h *MailHandler) storeOne(fh *multipart.FileHeader) (models.Attachment, error) {
	src, err := fh.Open()
	if err != nil {
		return models.Attachment{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	return h.files.Save(storage.Upload{
		Name:     validator.SanitizeFilename(fh.Filename),
		MimeType: fh.Header.Get(echo.HeaderContentType),
		Content:  src,
	})
}

// discard removes stored files of a mail that was never committed
func (h *MailHandler) discard(attachments []models.Attachment) {
	for _, att := range attachments {
		if err := h.files.Delete(att.FilePath); err != nil {
			h.logger.Warn("failed to remove orphaned attachment",
				slog.String("path", att.FilePath),
				slog.Any("error", err))
		}
	}
}

func isJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

// formValues merges the plain and bracketed ("name[]") forms of a field
func formValues[T any](values map[string][]T, key string) []T {
	merged := make([]T, 0, len(values[key])+len(values[key+"[]"]))
	merged = append(merged, values[key]...)
	return append(merged, values[key+"[]"]...)
}

func firstValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
