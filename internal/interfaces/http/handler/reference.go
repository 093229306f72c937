package handler

import (
	"net/http"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CurrencyHandler handles currency endpoints
type CurrencyHandler struct {
	BaseHandler
	currencies CurrencyManager
}

// NewCurrencyHandler creates a new CurrencyHandler
func NewCurrencyHandler(currencies CurrencyManager) *CurrencyHandler {
	return &CurrencyHandler{currencies: currencies}
}

// List godoc
// @ID           listCurrencies
//
//	@Summary		List currencies
//	@Tags			currencies
//	@Produce		json
//	@Param			search		query		string	false	"Code contains"
//	@Param			page		query		int		false	"Page number"
//	@Param			page_size	query		int		false	"Page size"
//	@Success		200			{object}	APIResponse[[]dto.CurrencyResponse]
//	@Router			/currencies [get]
func (h *CurrencyHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	defaults := shared.DefaultFilter()
	defaults.OrderBy = "code"
	defaults.OrderDir = "asc"

	page, err := h.currencies.List(c.Request.Context(), req.ToFilter(defaults))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page, dto.ToCurrencyResponse))
}

// Create godoc
// @ID           createCurrency
//
//	@Summary		Create a currency
//	@Tags			currencies
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CurrencyRequest	true	"Currency"
//	@Success		201		{object}	APIResponse[dto.CurrencyResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/currencies [post]
func (h *CurrencyHandler) Create(c *gin.Context) {
	var req dto.CurrencyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	currency, err := h.currencies.Create(c.Request.Context(), req.Code, req.PreSymbol, req.PostSymbol)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToCurrencyResponse(*currency))
}

// Get godoc
// @ID           getCurrency
//
//	@Summary		Get a currency
//	@Tags			currencies
//	@Produce		json
//	@Param			id	path		int	true	"Currency ID"
//	@Success		200	{object}	APIResponse[dto.CurrencyResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/currencies/{id} [get]
func (h *CurrencyHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	currency, err := h.currencies.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToCurrencyResponse(*currency))
}

// Update godoc
// @ID           updateCurrency
//
//	@Summary		Update a currency
//	@Tags			currencies
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Currency ID"
//	@Param			request	body		dto.CurrencyRequest	true	"Currency"
//	@Success		200		{object}	APIResponse[dto.CurrencyResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/currencies/{id} [put]
func (h *CurrencyHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CurrencyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	currency, err := h.currencies.Update(c.Request.Context(), id, req.Code, req.PreSymbol, req.PostSymbol)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToCurrencyResponse(*currency))
}

// Delete godoc
// @ID           deleteCurrency
//
//	@Summary		Delete a currency
//	@Description	Invoices using it keep their amounts and fall back to the default symbol
//	@Tags			currencies
//	@Param			id	path	int	true	"Currency ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Router			/currencies/{id} [delete]
func (h *CurrencyHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.currencies.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RecipientHandler handles recipient endpoints
type RecipientHandler struct {
	BaseHandler
	recipients RecipientManager
}

// NewRecipientHandler creates a new RecipientHandler
func NewRecipientHandler(recipients RecipientManager) *RecipientHandler {
	return &RecipientHandler{recipients: recipients}
}

// List godoc
// @ID           listRecipients
//
//	@Summary		List recipients
//	@Tags			recipients
//	@Produce		json
//	@Param			search		query		string	false	"Name or email contains"
//	@Param			page		query		int		false	"Page number"
//	@Param			page_size	query		int		false	"Page size"
//	@Success		200			{object}	APIResponse[[]dto.RecipientResponse]
//	@Router			/recipients [get]
func (h *RecipientHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	defaults := shared.DefaultFilter()
	defaults.OrderBy = "name"
	defaults.OrderDir = "asc"

	page, err := h.recipients.List(c.Request.Context(), req.ToFilter(defaults))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page, dto.ToRecipientResponse))
}

// Create godoc
// @ID           createRecipient
//
//	@Summary		Create a recipient
//	@Tags			recipients
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.RecipientRequest	true	"Recipient"
//	@Success		201		{object}	APIResponse[dto.RecipientResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/recipients [post]
func (h *RecipientHandler) Create(c *gin.Context) {
	var req dto.RecipientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	recipient, err := h.recipients.Create(c.Request.Context(), req.Name, req.Email, req.Address)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToRecipientResponse(*recipient))
}

// Get godoc
// @ID           getRecipient
//
//	@Summary		Get a recipient
//	@Tags			recipients
//	@Produce		json
//	@Param			id	path		int	true	"Recipient ID"
//	@Success		200	{object}	APIResponse[dto.RecipientResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/recipients/{id} [get]
func (h *RecipientHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	recipient, err := h.recipients.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToRecipientResponse(*recipient))
}

// Update godoc
// @ID           updateRecipient
//
//	@Summary		Update a recipient
//	@Tags			recipients
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Recipient ID"
//	@Param			request	body		dto.RecipientRequest	true	"Recipient"
//	@Success		200		{object}	APIResponse[dto.RecipientResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/recipients/{id} [put]
func (h *RecipientHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RecipientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	recipient, err := h.recipients.Update(c.Request.Context(), id, req.Name, req.Email, req.Address)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToRecipientResponse(*recipient))
}

// Delete godoc
// @ID           deleteRecipient
//
//	@Summary		Delete a recipient
//	@Description	Recipients still referenced by invoices cannot be deleted
//	@Tags			recipients
//	@Param			id	path	int	true	"Recipient ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Router			/recipients/{id} [delete]
func (h *RecipientHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.recipients.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
