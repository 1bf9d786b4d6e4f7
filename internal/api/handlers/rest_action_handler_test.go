package handlers_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"localpro/browse/internal/api/handlers"
	"localpro/browse/internal/models"
	"localpro/browse/internal/services"
)

func actionRouter(svc services.IActionService, userID string) *gin.Engine {
	handler := handlers.NewRestActionHandler(svc)
	r := gin.New()
	r.Use(asUser(userID))
	r.POST("/v1/application/:id/withdraw", handler.WithdrawApplication)
	r.POST("/v1/booking/:id/cancel", handler.CancelBooking)
	r.POST("/v1/wallet/default-payment-method", handler.SetDefaultPaymentMethod)
	r.POST("/v1/job/:id/status", handler.ChangeJobStatus)
	return r
}

func TestRestActionHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"success", nil, http.StatusOK, ""},
		{"not found", fmt.Errorf("%w: application a1 does not exist", services.ErrNotFound), http.StatusNotFound, "not found: application a1 does not exist"},
		{"not allowed", fmt.Errorf("%w: application is already withdrawn", services.ErrNotAllowed), http.StatusConflict, "action not allowed: application is already withdrawn"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "Failed to withdraw application"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockActionService)
			svc.On("WithdrawApplication", mock.Anything, "u1", "a1").Return(tc.err)

			w := doRequest(actionRouter(svc, "u1"), http.MethodPost, "/v1/application/a1/withdraw", nil)
			assert.Equal(t, tc.status, w.Code)
			if tc.message != "" {
				var resp map[string]string
				decode(t, w, &resp)
				assert.Equal(t, tc.message, resp["error"])
			}
		})
	}
}

func TestRestActionHandler_RequiresUser(t *testing.T) {
	svc := new(MockActionService)
	w := doRequest(actionRouter(svc, ""), http.MethodPost, "/v1/booking/b1/cancel", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestRestActionHandler_CancelBooking(t *testing.T) {
	svc := new(MockActionService)
	svc.On("CancelBooking", mock.Anything, "u1", "b1").Return(nil)

	w := doRequest(actionRouter(svc, "u1"), http.MethodPost, "/v1/booking/b1/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestRestActionHandler_SetDefaultPaymentMethod(t *testing.T) {
	svc := new(MockActionService)
	svc.On("SetDefaultPaymentMethod", mock.Anything, "u1", "pm1").Return(nil)
	r := actionRouter(svc, "u1")

	w := doRequest(r, http.MethodPost, "/v1/wallet/default-payment-method", map[string]string{"payment_method_id": "pm1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPost, "/v1/wallet/default-payment-method", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "SetDefaultPaymentMethod", 1)
}

func TestRestActionHandler_ChangeJobStatus(t *testing.T) {
	svc := new(MockActionService)
	svc.On("ChangeJobStatus", mock.Anything, "u1", "j1", models.JobStatusInProgress).Return(nil)
	r := actionRouter(svc, "u1")

	w := doRequest(r, http.MethodPost, "/v1/job/j1/status", map[string]string{"status": " In_Progress "})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPost, "/v1/job/j1/status", map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}
