package roblox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteUserRestriction(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("test-key", "123456", WithBaseURL(srv.URL))
	err := c.DeleteUserRestriction(context.Background(), "789")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/cloud/v2/universes/123456/user-restrictions/789", gotPath)
	assert.Equal(t, "test-key", gotKey)
}

func TestDeleteUserRestrictionNotFoundIsSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"NOT_FOUND"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("test-key", "123456", WithBaseURL(srv.URL))
	assert.NoError(t, c.DeleteUserRestriction(context.Background(), "789"))
}

func TestDeleteUserRestrictionFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"INVALID_KEY"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("bad-key", "123456", WithBaseURL(srv.URL))
	err := c.DeleteUserRestriction(context.Background(), "789")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestDeleteUserRestrictionHonorsContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("test-key", "123456", WithBaseURL(srv.URL))
	assert.Error(t, c.DeleteUserRestriction(ctx, "789"))
}
