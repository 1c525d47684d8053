package authenticating

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricsdomain "github.com/vfg2006/metrics-dashboard/infrastructure/integrator/metricsapi/domain"
	clientmocks "github.com/vfg2006/metrics-dashboard/infrastructure/integrator/metricsapi/metricsclient/mocks"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/authenticating/mocks"
	"github.com/vfg2006/metrics-dashboard/pkg/apiErrors"
	"github.com/vfg2006/metrics-dashboard/pkg/log"
	"go.uber.org/mock/gomock"
)

func init() {
	log.SetupTestLogger()
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := clientmocks.NewMockClient(ctrl)
	sessions := mocks.NewMockSessionStore(ctrl)
	ctx := context.Background()

	token := unsignedToken(`{"role":"admin"}`)

	client.EXPECT().
		Login(ctx, domain.Credentials{Email: "ana@x.com", Password: "pw"}).
		Return(token, nil)
	sessions.EXPECT().
		Set(ctx, domain.Session{Token: token, Role: domain.RoleAdmin}).
		Return(nil)

	service := NewService(client, sessions)

	session, err := service.Login(ctx, " ana@x.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, session.Role)
	assert.Equal(t, token, session.Token)
}

func TestLogin_AnyStatusIsInvalidCredentials(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusUnprocessableEntity, http.StatusInternalServerError} {
		ctrl := gomock.NewController(t)
		client := clientmocks.NewMockClient(ctrl)
		sessions := mocks.NewMockSessionStore(ctrl)

		client.EXPECT().
			Login(gomock.Any(), gomock.Any()).
			Return("", &metricsdomain.StatusError{StatusCode: status, Detail: "detalhe do servidor"})

		service := NewService(client, sessions)

		_, err := service.Login(context.Background(), "ana@x.com", "errada")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.NotContains(t, err.Error(), "detalhe do servidor")

		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, apiErrors.ErrInvalidCredentials, authErr.Code)
	}
}

func TestLogin_TransportFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := clientmocks.NewMockClient(ctrl)
	sessions := mocks.NewMockSessionStore(ctrl)

	client.EXPECT().Login(gomock.Any(), gomock.Any()).Return("", errors.New("connection refused"))

	_, err := NewService(client, sessions).Login(context.Background(), "ana@x.com", "pw")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestLogin_MalformedTokenKeepsNoSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := clientmocks.NewMockClient(ctrl)
	sessions := mocks.NewMockSessionStore(ctrl)

	client.EXPECT().Login(gomock.Any(), gomock.Any()).Return("nao-e-um-token", nil)
	sessions.EXPECT().Set(gomock.Any(), gomock.Any()).Times(0)

	_, err := NewService(client, sessions).Login(context.Background(), "ana@x.com", "pw")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestLogin_MissingFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := clientmocks.NewMockClient(ctrl)
	sessions := mocks.NewMockSessionStore(ctrl)

	_, err := NewService(client, sessions).Login(context.Background(), "", "pw")
	assert.ErrorIs(t, err, ErrMissingRequiredData)
	assert.True(t, IsCredentialsError(err))
}

func TestLogout(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := clientmocks.NewMockClient(ctrl)
	sessions := mocks.NewMockSessionStore(ctrl)
	ctx := context.Background()

	sessions.EXPECT().Clear(ctx).Return(nil)

	assert.NoError(t, NewService(client, sessions).Logout(ctx))
}
