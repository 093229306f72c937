package handler

import (
	"net/http"
	"strconv"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ExportHandler runs and lists accounting exports
type ExportHandler struct {
	BaseHandler
	exports ExportRunner
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exports ExportRunner) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Run godoc
// @ID           runExport
//
//	@Summary		Run an accounting export
//	@Description	A test run writes the file without recording it or touching export states
//	@Tags			exports
//	@Produce		json
//	@Param			test	query		bool	false	"Test mode"
//	@Success		201		{object}	APIResponse[dto.ExportResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/exports [post]
func (h *ExportHandler) Run(c *gin.Context) {
	testMode := false
	if raw := c.Query("test"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "Invalid test flag")
			return
		}
		testMode = v
	}

	url, err := h.exports.Run(c.Request.Context(), testMode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ExportResponse{TestMode: testMode, URL: url})
}

// List godoc
// @ID           listExports
//
//	@Summary		List recorded exports
//	@Tags			exports
//	@Produce		json
//	@Param			page		query		int	false	"Page number"
//	@Param			page_size	query		int	false	"Page size"
//	@Success		200			{object}	APIResponse[[]dto.ExportRecordResponse]
//	@Router			/exports [get]
func (h *ExportHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	defaults := shared.DefaultFilter()
	defaults.OrderBy = "date"
	defaults.OrderDir = "desc"

	page, err := h.exports.List(c.Request.Context(), req.ToFilter(defaults))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page, dto.ToExportRecordResponse))
}

