package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dafibh/arthaku/internal/service"
	"github.com/labstack/echo/v4"
)

// MaxImportSize caps the size of an imported ledger file
const MaxImportSize = 10 << 20

// BackupHandler handles remote backup and local file export/import
type BackupHandler struct {
	backupService *service.BackupService
}

// NewBackupHandler creates a new BackupHandler
func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
	}
}

// Backup handles POST /api/v1/backups
func (h *BackupHandler) Backup(c echo.Context) error {
	receipt, err := h.backupService.Backup(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, "Failed to create backup")
	}
	return c.JSON(http.StatusCreated, receipt)
}

// Restore handles POST /api/v1/backups/:handle/restore
func (h *BackupHandler) Restore(c echo.Context) error {
	view, err := h.backupService.Restore(c.Request().Context(), c.Param("handle"))
	if err != nil {
		return handleServiceError(c, err, "Failed to restore backup")
	}
	return c.JSON(http.StatusOK, view)
}

// Reload handles POST /api/v1/reload
func (h *BackupHandler) Reload(c echo.Context) error {
	view, err := h.backupService.Reload(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, "Failed to reload ledger")
	}
	return c.JSON(http.StatusOK, view)
}

// Export handles GET /api/v1/export
func (h *BackupHandler) Export(c echo.Context) error {
	data, err := h.backupService.Export()
	if err != nil {
		return handleServiceError(c, err, "Failed to export ledger")
	}

	filename := fmt.Sprintf("Laporan_Keuangan_Arthaku_%s.json", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, data)
}

// Import handles POST /api/v1/import. The body is either the exported JSON
// or a multipart form with a "file" field.
func (h *BackupHandler) Import(c echo.Context) error {
	data, err := readImportBody(c)
	if err != nil {
		return NewValidationError(c, "Invalid import file", []ValidationError{
			{Field: "file", Message: err.Error()},
		})
	}

	view, err := h.backupService.Import(c.Request().Context(), data)
	if err != nil {
		return handleServiceError(c, err, "Failed to import ledger")
	}
	return c.JSON(http.StatusOK, view)
}

func readImportBody(c echo.Context) ([]byte, error) {
	var r io.Reader = c.Request().Body
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing file field")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImportSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImportSize {
		return nil, fmt.Errorf("file exceeds %d bytes", MaxImportSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	return data, nil
}
