package altimetry

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fieldmap/internal/geodesy"
)

// MockHTTPDoer is a mock implementation of HTTPDoer.
type MockHTTPDoer struct {
	mock.Mock
}

func (m *MockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

func mockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

var testPoints = []geodesy.LatLng{
	{Lat: 45.188529, Lng: 5.724524},
	{Lat: 45.190000, Lng: 5.730000},
}

func TestClient_Elevations(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		mockResponse(200, `{"elevations":[212.5,218.1]}`), nil)

	client := NewClientWithHTTPDoer("test-key", "https://alti.example.com", mockHTTP, nil)

	elevations, err := client.Elevations(context.Background(), testPoints)
	require.NoError(t, err)
	assert.Equal(t, []float64{212.5, 218.1}, elevations)

	mockHTTP.AssertExpectations(t)
}

func TestClient_Elevations_RequestFormat(t *testing.T) {
	var captured *http.Request
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Run(func(args mock.Arguments) {
		captured = args.Get(0).(*http.Request)
	}).Return(mockResponse(200, `{"elevations":[1,2]}`), nil)

	client := NewClientWithHTTPDoer("test-key", "https://alti.example.com", mockHTTP, nil)
	_, err := client.Elevations(context.Background(), testPoints)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "GET", captured.Method)
	assert.Contains(t, captured.URL.Path, "/alti/rest/elevation.json")

	query := captured.URL.Query()
	assert.Equal(t, "5.724524|5.730000", query.Get("lon"))
	assert.Equal(t, "45.188529|45.190000", query.Get("lat"))
	assert.Equal(t, "true", query.Get("zonly"))
	assert.Equal(t, "test-key", query.Get("apikey"))

	mockHTTP.AssertExpectations(t)
}

func TestClient_Elevations_MissingCredential(t *testing.T) {
	mockHTTP := &MockHTTPDoer{} // no expectations: no call may happen

	for _, key := range []string{"", "YOUR_API_KEY"} {
		client := NewClientWithHTTPDoer(key, "https://alti.example.com", mockHTTP, nil)
		_, err := client.Elevations(context.Background(), testPoints)
		assert.ErrorIs(t, err, ErrMissingCredential)
	}
	mockHTTP.AssertExpectations(t)
}

func TestClient_Elevations_ServiceError(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		mockResponse(500, `{"error":"internal"}`), nil)

	client := NewClientWithHTTPDoer("test-key", "https://alti.example.com", mockHTTP, nil)
	_, err := client.Elevations(context.Background(), testPoints)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elevation service error 500")

	mockHTTP.AssertExpectations(t)
}

func TestClient_Elevations_BadCredential(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		mockResponse(403, ``), nil)

	client := NewClientWithHTTPDoer("bad-key", "https://alti.example.com", mockHTTP, nil)
	_, err := client.Elevations(context.Background(), testPoints)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected credential")
}

func TestClient_Elevations_CountMismatch(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		mockResponse(200, `{"elevations":[212.5]}`), nil)

	client := NewClientWithHTTPDoer("test-key", "https://alti.example.com", mockHTTP, nil)
	_, err := client.Elevations(context.Background(), testPoints)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 1 values for 2 points")
}

func TestClient_Elevations_InvalidJSON(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		mockResponse(200, `{"elevations": nope}`), nil)

	client := NewClientWithHTTPDoer("test-key", "https://alti.example.com", mockHTTP, nil)
	_, err := client.Elevations(context.Background(), testPoints)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestClient_Elevations_NoPoints(t *testing.T) {
	client := NewClientWithHTTPDoer("test-key", "https://alti.example.com", &MockHTTPDoer{}, nil)
	_, err := client.Elevations(context.Background(), nil)
	assert.Error(t, err)
}
