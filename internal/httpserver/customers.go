package httpserver

import (
	"net/http"
	"time"

	"merchant-client/internal/domain"
	customersvc "merchant-client/internal/service/customer"

	"github.com/gin-gonic/gin"
)

type customerResponse struct {
	ID             string                  `json:"id"`
	FullName       *string                 `json:"full_name,omitempty"`
	BusinessName   *string                 `json:"business_name,omitempty"`
	Email          string                  `json:"email"`
	Phone          *string                 `json:"phone,omitempty"`
	PaymentMethods []paymentMethodResponse `json:"payment_methods"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

type paymentMethodResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

func toCustomerResponse(c domain.Customer) customerResponse {
	methods := make([]paymentMethodResponse, 0, len(c.PaymentMethods))
	for _, pm := range c.PaymentMethods {
		methods = append(methods, paymentMethodResponse{ID: pm.ID, Type: pm.Type, CreatedAt: pm.SavedAt.UTC()})
	}
	return customerResponse{
		ID:             c.ID,
		FullName:       c.FullName,
		BusinessName:   c.BusinessName,
		Email:          c.Email,
		Phone:          c.Phone,
		PaymentMethods: methods,
		CreatedAt:      c.CreatedAt.UTC(),
		UpdatedAt:      c.UpdatedAt.UTC(),
	}
}

func (h *handlers) listCustomers(c *gin.Context) {
	list, err := h.customers.List(c.Request.Context(), merchantID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]customerResponse, 0, len(list))
	for _, cu := range list {
		out = append(out, toCustomerResponse(cu))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) createCustomer(c *gin.Context) {
	var in customersvc.CreateInput
	if err := bindOptionalJSON(c, &in); err != nil {
		badRequest(c, err)
		return
	}
	cu, err := h.customers.Create(c.Request.Context(), merchantID(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomerResponse(*cu))
}

func (h *handlers) getCustomer(c *gin.Context) {
	cu, err := h.customers.Get(c.Request.Context(), merchantID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(*cu))
}

func (h *handlers) updateCustomer(c *gin.Context) {
	var in customersvc.UpdateInput
	if err := bindOptionalJSON(c, &in); err != nil {
		badRequest(c, err)
		return
	}
	cu, err := h.customers.Update(c.Request.Context(), merchantID(c), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(*cu))
}

func (h *handlers) deleteCustomer(c *gin.Context) {
	if err := h.customers.Delete(c.Request.Context(), merchantID(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
