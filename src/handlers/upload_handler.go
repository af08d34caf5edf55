// backend/src/handlers/upload_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/username/sellerledger/backend/src/config"
	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/security/validation"
	"github.com/username/sellerledger/backend/src/services"
	"github.com/username/sellerledger/backend/src/utils"
)

type UploadHandler struct {
	ingestionService services.IngestionService
}

func NewUploadHandler(service services.IngestionService) *UploadHandler {
	return &UploadHandler{
		ingestionService: service,
	}
}

// HandleUpload accepts a multipart report upload: the file, a target account
// id, an optional replace-mode flag and an optional date range. Row-level
// problems never fail the request; only structural failures (unreadable
// file, missing account, binary content) return an error status.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "userID", userID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to process upload or file too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	accountIDStr := r.FormValue("account_id")
	if accountIDStr == "" {
		logger.L.Warn("Upload request missing 'account_id' field", "userID", userID)
		utils.SendJSONError(w, "Target account is required.", http.StatusBadRequest)
		return
	}
	accountID, err := strconv.ParseInt(accountIDStr, 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	opts := services.IngestOptions{}
	if replaceStr := r.FormValue("replace_mode"); replaceStr != "" {
		opts.ReplaceMode, _ = strconv.ParseBool(replaceStr)
	}
	if startStr := r.FormValue("start_date"); startStr != "" {
		if t, err := time.Parse("2006-01-02", startStr); err == nil {
			opts.DateStart = &t
		} else {
			utils.SendJSONError(w, "Invalid start_date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}
	if endStr := r.FormValue("end_date"); endStr != "" {
		if t, err := time.Parse("2006-01-02", endStr); err == nil {
			opts.DateEnd = &t
		} else {
			utils.SendJSONError(w, "Invalid end_date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "userID", userID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "userID", userID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := validation.ValidateReportContent(file); err != nil {
		logger.L.Warn("Server-side file content validation failed", "userID", userID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing upload request", "userID", userID, "accountID", accountID,
		"filename", fileHeader.Filename, "replaceMode", opts.ReplaceMode)

	result, err := h.ingestionService.IngestReport(file, userID, accountID, opts)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			utils.SendJSONError(w, "Account not found", http.StatusNotFound)
		case errors.Is(err, services.ErrParsingFailed):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			logger.L.Error("Report ingestion failed", "userID", userID, "error", err)
			utils.SendJSONError(w, "Failed to process report upload", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding JSON response for upload result", "userID", userID, "error", err)
	}
}
