package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetBlueprint(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/api/blueprints/payments-platform", r.URL.Path)
		assert.Equal("test-key", r.Header.Get("X-API-Key"))
		assert.Equal("application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "11111111-1111-1111-1111-111111111111",
			"name": "payments-platform",
			"resources": [
				{
					"id": "22222222-2222-2222-2222-222222222222",
					"name": "orders-db",
					"resource_type": {
						"id": "33333333-3333-3333-3333-333333333333",
						"name": "Database",
						"category": "storage"
					},
					"cloud_provider": {
						"id": "44444444-4444-4444-4444-444444444444",
						"name": "aws",
						"display_name": "Amazon Web Services"
					},
					"configuration": {"engine": "postgres"},
					"cloud_specific_properties": {"instance_class": "db.t3.medium"}
				}
			],
			"supported_cloud_providers": []
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	bp, err := client.GetBlueprint("payments-platform")
	require.NoError(err)

	assert.Equal("payments-platform", bp.Name)
	require.Len(bp.Resources, 1)
	assert.Equal("orders-db", bp.Resources[0].Name)
	assert.Equal("Database", bp.Resources[0].ResourceType.Name)
	assert.Equal("Amazon Web Services", bp.Resources[0].CloudProvider.DisplayName)
	assert.Equal("postgres", bp.Resources[0].Configuration["engine"])
}

func TestClient_GetStack(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/api/stacks/payments-prod", r.URL.Path)
		w.Write([]byte(`{
			"id": "55555555-5555-5555-5555-555555555555",
			"name": "payments-prod",
			"cloud_name": "aws",
			"stack_type": "production",
			"stack_resources": []
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	st, err := client.GetStack("payments-prod")
	require.NoError(err)

	assert.Equal("payments-prod", st.Name)
	assert.Equal("aws", st.CloudName)
	assert.Nil(st.Blueprint)
}

func TestClient_errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(*assert.Assertions, error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(assert *assert.Assertions, err error) {
				var aerr *AuthenticationError
				assert.ErrorAs(err, &aerr)
				assert.Equal(http.StatusUnauthorized, aerr.Status)
			},
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			check: func(assert *assert.Assertions, err error) {
				var aerr *AuthenticationError
				assert.ErrorAs(err, &aerr)
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(assert *assert.Assertions, err error) {
				var nferr *NotFoundError
				assert.ErrorAs(err, &nferr)
				assert.Equal("missing-stack", nferr.Resource)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(server.URL, "bad-key")
			_, err := client.GetStack("missing-stack")
			require.Error(err)
			tt.check(assert, err)
		})
	}
}

func TestClient_serverError(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("backend exploded"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.GetBlueprint("anything")
	require.Error(err)

	var aerr *APIError
	require.ErrorAs(err, &aerr)
	assert.Equal(http.StatusInternalServerError, aerr.Status)
	assert.Contains(aerr.Body, "backend exploded")
}

func TestClient_malformedBody(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.GetBlueprint("anything")
	assert.Error(err)
	assert.Contains(err.Error(), "decode")
}
