package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	repomocks "github.com/dashboardai/insights-api/infrastructure/repository/mocks"
	"github.com/dashboardai/insights-api/internal/api/handler/router"
	"github.com/dashboardai/insights-api/internal/domain"
	datasetmocks "github.com/dashboardai/insights-api/internal/usecases/datasets/mocks"
)

func newDatasetRouter(t *testing.T) (router.Router, *datasetmocks.MockLoader, *repomocks.MockAccountRepository) {
	ctrl := gomock.NewController(t)

	loader := datasetmocks.NewMockLoader(ctrl)
	accountRepo := repomocks.NewMockAccountRepository(ctrl)

	rt := router.New(router.WithRoutes(Datasets(loader, accountRepo)...))
	return rt, loader, accountRepo
}

func TestGetDatasetByInternalID(t *testing.T) {
	rt, loader, _ := newDatasetRouter(t)

	loader.EXPECT().Get(gomock.Any(), 7, 3).Return(&domain.Dataset{AccountID: 7, UserID: 3}, nil)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/accounts/7/users/3/dataset", nil)

	rt.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"account_id":7`)
}

func TestGetDatasetByPlatformIdentifier(t *testing.T) {
	rt, loader, accountRepo := newDatasetRouter(t)

	// A non-numeric segment is translated through the account repository.
	accountRepo.EXPECT().
		ResolveAccountID(gomock.Any(), "act_123", domain.PlatformFacebookAds).
		Return(7, nil)
	loader.EXPECT().Get(gomock.Any(), 7, 3).Return(&domain.Dataset{AccountID: 7, UserID: 3}, nil)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/accounts/act_123/users/3/dataset", nil)

	rt.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestGetDatasetUnknownIdentifier(t *testing.T) {
	rt, _, accountRepo := newDatasetRouter(t)

	accountRepo.EXPECT().
		ResolveAccountID(gomock.Any(), "act_999", domain.PlatformFacebookAds).
		Return(0, nil)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/accounts/act_999/users/3/dataset", nil)

	rt.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "ING_002")
}

func TestGetDatasetRefreshQueryParam(t *testing.T) {
	rt, loader, _ := newDatasetRouter(t)

	loader.EXPECT().Refresh(gomock.Any(), 7, 3).Return(&domain.Dataset{AccountID: 7, UserID: 3}, nil)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/accounts/7/users/3/dataset?refresh=true", nil)

	rt.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
}
