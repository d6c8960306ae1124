//go:build unit

package api_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/handler/api"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/usecase/commands"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/tests/common/httptest"
	commandsmock "github.com/TravisHFan/at-Cloud-sign-up-system-sub002/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type WebhookHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockWebhookCommands
	handler      *api.WebhookHandler
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockWebhookCommands(s.mockCtrl)
	s.handler = api.NewWebhookHandler(s.mockCommands, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.router.POST("/api/webhooks/stripe", s.handler.HandleStripeEvent)
}

func (s *WebhookHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) TestHandleStripeEvent() {
	url := "/api/webhooks/stripe"
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)
	header := "t=1700000000,v1=deadbeef"

	s.Run("success: 200 with acknowledgement body", func() {
		s.mockCommands.EXPECT().ProcessEvent(gomock.Any(), payload, header).
			Return(nil).Times(1)

		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, url, payload,
			map[string]string{"Stripe-Signature": header})

		var response map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(true, response["success"])
		s.Equal(true, response["received"])
	})

	s.Run("success: raw body and header are passed through verbatim", func() {
		var gotPayload []byte
		var gotHeader string
		s.mockCommands.EXPECT().ProcessEvent(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, p []byte, h string) error {
				gotPayload = p
				gotHeader = h
				return nil
			}).Times(1)

		httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, url, payload,
			map[string]string{"Stripe-Signature": header})

		s.Equal(payload, gotPayload)
		s.Equal(header, gotHeader)
	})

	s.Run("error: 400 on signature rejection", func() {
		s.mockCommands.EXPECT().ProcessEvent(gomock.Any(), payload, "").
			Return(commands.ErrInvalidSignature).Times(1)

		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, url, payload, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid webhook signature")
	})

	s.Run("error: 400 on payload rejection", func() {
		s.mockCommands.EXPECT().ProcessEvent(gomock.Any(), payload, header).
			Return(commands.ErrInvalidPayload).Times(1)

		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, url, payload,
			map[string]string{"Stripe-Signature": header})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid webhook payload")
	})

	s.Run("error: 500 with retry-signal body on processing failure", func() {
		s.mockCommands.EXPECT().ProcessEvent(gomock.Any(), payload, header).
			Return(errors.New("lock acquisition timed out")).Times(1)

		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, url, payload,
			map[string]string{"Stripe-Signature": header})

		s.Equal(http.StatusInternalServerError, rec.Code)
		s.JSONEq(`{"success":false,"message":"Webhook processing failed"}`, rec.Body.String())
	})

	s.Run("error: 500 on unknown purchase so the provider retries", func() {
		s.mockCommands.EXPECT().ProcessEvent(gomock.Any(), payload, header).
			Return(commands.ErrPurchaseNotFound).Times(1)

		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, url, payload,
			map[string]string{"Stripe-Signature": header})

		s.Equal(http.StatusInternalServerError, rec.Code)
		s.JSONEq(`{"success":false,"message":"Webhook processing failed"}`, rec.Body.String())
	})
}
