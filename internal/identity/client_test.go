package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteIdentity(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		errText string
	}{
		{name: "deleted", status: http.StatusOK, body: `{"deleted":true}`},
		{name: "no content", status: http.StatusNoContent},
		{name: "missing", status: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", errText: "status 500: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotPath, gotAuth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod, gotPath, gotAuth = r.Method, r.URL.Path, r.Header.Get("Authorization")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewClient(srv.URL+"/", "sk_test").DeleteIdentity(context.Background(), "u1")
			assert.Equal(t, http.MethodDelete, gotMethod)
			assert.Equal(t, "/v1/users/u1", gotPath)
			assert.Equal(t, "Bearer sk_test", gotAuth)

			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr))
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeleteIdentity_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	assert.Error(t, c.DeleteIdentity(context.Background(), "u1"))
}
