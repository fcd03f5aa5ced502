package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stretchr/testify/suite"
)

type ClientTestSuite struct {
	suite.Suite
	server *httptest.Server
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) TearDownTest() {
	if s.server != nil {
		s.server.Close()
	}
}

// TestGetTransactionStatus Тест на получение статуса транзакции при разных ответах шлюза.
func (s *ClientTestSuite) TestGetTransactionStatus() {
	type tcase struct {
		name         string
		reference    string
		httpStatus   int
		retryAfter   string
		wantResponse *Response
		wantErrType  error
	}

	cases := []tcase{
		{
			name:       "completed transaction",
			reference:  "TXN-0001",
			httpStatus: http.StatusOK,
			wantResponse: &Response{
				Reference: "TXN-0001",
				Status:    StatusCompleted,
				Amount:    decimal.NewFromInt(500),
			},
		}, {
			name:       "pending transaction",
			reference:  "TXN-0002",
			httpStatus: http.StatusOK,
			wantResponse: &Response{
				Reference: "TXN-0002",
				Status:    StatusPending,
			},
		}, {
			name:        "not found",
			reference:   "TXN-0003",
			httpStatus:  http.StatusNotFound,
			wantErrType: new(StatusCodeError),
		}, {
			name:        "too many requests",
			reference:   "TXN-0004",
			httpStatus:  http.StatusTooManyRequests,
			retryAfter:  "5",
			wantErrType: new(TooManyRequestError),
		}, {
			name:        "internal error",
			reference:   "TXN-0005",
			httpStatus:  http.StatusInternalServerError,
			wantErrType: new(StatusCodeError),
		},
	}

	// хендлер для тестового сервера. В зависимости от пути запроса определяет тот или иной кейс и выдает
	// тот или иной ответ.
	serverHandler := func() func(http.ResponseWriter, *http.Request) {
		return func(w http.ResponseWriter, r *http.Request) {
			// подбираем кейс, чтоб выдать ожидаемый ответ.
			var rc *tcase
			for _, c := range cases {
				reference, exist := strings.CutPrefix(r.URL.Path, "/api/transactions/")
				s.Require().True(exist) //nolint:testifylint
				if reference == c.reference {
					rc = &c
					break
				}
			}
			s.Require().NotNilf(rc, "тест для пути %s не найден", r.URL.Path) //nolint:testifylint

			if rc.retryAfter != "" {
				w.Header().Set("Retry-After", rc.retryAfter)
			}

			var body []byte
			if rc.httpStatus == http.StatusOK {
				w.Header().Set("Content-Type", "application/json")
				var bErr error
				body, bErr = json.Marshal(rc.wantResponse)
				s.NoError(bErr)
			}
			w.WriteHeader(rc.httpStatus)

			if body != nil {
				_, wErr := w.Write(body)
				s.NoError(wErr)
			}
		}
	}

	s.server = httptest.NewServer(http.HandlerFunc(serverHandler()))

	for _, t := range cases {
		s.Run(t.name, func() {
			gatewayClient := New(s.server.URL)
			response, err := gatewayClient.GetTransactionStatus(s.T().Context(), t.reference)

			if t.wantErrType != nil {
				s.Require().Error(err)
				s.Require().ErrorAs(err, &t.wantErrType) //nolint:testifylint
				return
			}
			s.Require().NoError(err)
			s.NotNil(response)
			s.Equal(t.wantResponse.Reference, response.Reference)
			s.Equal(t.wantResponse.Status, response.Status)
			s.True(t.wantResponse.Amount.Equal(response.Amount))
		})
	}
}

// TestGetTransactionStatus_RetryAfter Тест на парсинг заголовка Retry-After.
func (s *ClientTestSuite) TestGetTransactionStatus_RetryAfter() {
	cases := []struct {
		name      string
		header    string
		wantDelay time.Duration
	}{
		{name: "valid header", header: "5", wantDelay: 5 * time.Second},
		{name: "missing header", header: "", wantDelay: 60 * time.Second},
		{name: "out of range", header: "999", wantDelay: 60 * time.Second},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if t.header != "" {
					w.Header().Set("Retry-After", t.header)
				}
				w.WriteHeader(http.StatusTooManyRequests)
			}))
			defer server.Close()

			gatewayClient := New(server.URL)
			_, err := gatewayClient.GetTransactionStatus(s.T().Context(), "TXN-0001")

			var tooManyReq *TooManyRequestError
			s.Require().ErrorAs(err, &tooManyReq)
			s.Equal(t.wantDelay, tooManyReq.RetryAfter)
		})
	}
}
