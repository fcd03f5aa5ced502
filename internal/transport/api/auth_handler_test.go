package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/logger"
	"github.com/fsdevblog/creator-market/internal/service"
	"github.com/fsdevblog/creator-market/internal/service/tokens"
	"github.com/fsdevblog/creator-market/internal/transport/api/mocks"
	"github.com/fsdevblog/creator-market/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	mockUserService *mocks.MockUserServicer
	router          *gin.Engine
	jwtSecret       []byte
}

func (s *AuthHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockUserService = mocks.NewMockUserServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:       logger.New(os.Stdout),
		UserService:  s.mockUserService,
		JWTSecretKey: s.jwtSecret,
	})
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) TestRegister() {
	jwtTokenStr, jwtErr := tokens.GenerateUserJWT(uuid.New(), domain.RoleBrand, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)

	password := gofakeit.Password(true, true, true, false, false, 12)

	argsOk := service.RegisterUserArgs{Email: gofakeit.Email(), Password: password, Role: domain.RoleBrand}
	argsDup := service.RegisterUserArgs{Email: gofakeit.Email(), Password: password, Role: domain.RoleInfluencer}

	s.mockUserService.EXPECT().Register(gomock.Any(), argsOk).Return(&domain.User{
		ID:    uuid.New(),
		Email: argsOk.Email,
		Role:  argsOk.Role,
	}, jwtTokenStr, nil)
	s.mockUserService.EXPECT().Register(gomock.Any(), argsDup).Return(nil, "", domain.ErrDuplicateKey)

	var cases = []struct {
		name        string
		args        *UserRegisterParams
		jwtTokenStr *string
		wantStatus  int
	}{
		{
			name:       "user created",
			args:       &UserRegisterParams{Email: argsOk.Email, Password: argsOk.Password, Role: "brand"},
			wantStatus: http.StatusOK,
		}, {
			name:        "user already logged in",
			args:        &UserRegisterParams{Email: argsOk.Email, Password: argsOk.Password, Role: "brand"},
			wantStatus:  http.StatusUnauthorized,
			jwtTokenStr: &jwtTokenStr,
		}, {
			name:       "duplicate email",
			args:       &UserRegisterParams{Email: argsDup.Email, Password: argsDup.Password, Role: "influencer"},
			wantStatus: http.StatusConflict,
		}, {
			name:       "bad request",
			args:       nil,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "invalid email",
			args:       &UserRegisterParams{Email: "not-an-email", Password: password, Role: "brand"},
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "short password",
			args:       &UserRegisterParams{Email: gofakeit.Email(), Password: "123", Role: "brand"},
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			// роль admin через публичную регистрацию получить нельзя.
			name:       "admin role rejected",
			args:       &UserRegisterParams{Email: gofakeit.Email(), Password: password, Role: "admin"},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			var payload []byte
			if t.args != nil {
				payload, _ = json.Marshal(t.args)
			}

			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + RegisterRoute,
				Body:   bytes.NewReader(payload),
			}

			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtTokenStr != nil {
				v := fmt.Sprintf("Bearer %s", *t.jwtTokenStr)
				reqOpts = append(reqOpts, testutils.WithHeader("Authorization", v))
			}

			res, err := testutils.MakeRequest(args, reqOpts...)

			s.Require().NoError(err)
			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *AuthHandlerTestSuite) TestLogin() {
	jwtTokenStr, jwtErr := tokens.GenerateUserJWT(uuid.New(), domain.RoleBrand, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)

	password := gofakeit.Password(true, true, true, false, false, 12)

	argsOk := service.LoginUserArgs{Email: gofakeit.Email(), Password: password}
	argsWrongEmail := service.LoginUserArgs{Email: gofakeit.Email(), Password: password}
	argsWrongPass := service.LoginUserArgs{Email: argsOk.Email, Password: password + "!wrong"}

	s.mockUserService.EXPECT().
		Login(gomock.Any(), argsOk).
		Return(&domain.User{ID: uuid.New(), Email: argsOk.Email, Role: domain.RoleBrand}, "token", nil)
	s.mockUserService.EXPECT().
		Login(gomock.Any(), argsWrongEmail).
		Return(nil, "", domain.ErrRecordNotFound)
	s.mockUserService.EXPECT().
		Login(gomock.Any(), argsWrongPass).
		Return(nil, "", domain.ErrPasswordMissMatch)

	cases := []struct {
		name        string
		args        *UserLoginParams
		jwtTokenStr *string
		wantStatus  int
	}{
		{
			name:       "ok",
			args:       &UserLoginParams{Email: argsOk.Email, Password: argsOk.Password},
			wantStatus: http.StatusOK,
		}, {
			name:        "already logged in",
			args:        &UserLoginParams{Email: argsOk.Email, Password: argsOk.Password},
			wantStatus:  http.StatusUnauthorized,
			jwtTokenStr: &jwtTokenStr,
		}, {
			name:       "bad request",
			args:       nil,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "unknown email",
			args:       &UserLoginParams{Email: argsWrongEmail.Email, Password: argsWrongEmail.Password},
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "wrong password",
			args:       &UserLoginParams{Email: argsWrongPass.Email, Password: argsWrongPass.Password},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			var payload []byte
			if t.args != nil {
				payload, _ = json.Marshal(t.args)
			}

			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + LoginRoute,
				Body:   bytes.NewReader(payload),
			}

			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtTokenStr != nil {
				v := fmt.Sprintf("Bearer %s", *t.jwtTokenStr)
				reqOpts = append(reqOpts, testutils.WithHeader("Authorization", v))
			}

			res, err := testutils.MakeRequest(args, reqOpts...)
			s.Require().NoError(err)
			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}
