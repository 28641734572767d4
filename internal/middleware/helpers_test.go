package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"dashboard-api/internal/model"
	"dashboard-api/pkg/apierror"
)

type fakeVerifier struct {
	subjects map[string]string
}

func (f fakeVerifier) Verify(token string) (*model.TokenClaims, error) {
	subject, ok := f.subjects[token]
	if !ok {
		return nil, apierror.Unauthenticated()
	}
	return &model.TokenClaims{Subject: subject}, nil
}

type fakeRevocations struct {
	revoked map[string]bool
}

func (f fakeRevocations) Check(_ context.Context, token string) error {
	if f.revoked[token] {
		return apierror.TokenRevoked()
	}
	return nil
}

type fakeUsers struct {
	users map[string]model.User
	err   error
}

func (f fakeUsers) Resolve(_ context.Context, id string) (model.User, error) {
	if f.err != nil {
		return model.User{}, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return model.User{}, apierror.UserNotFound()
	}
	return user, nil
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()

	var body model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func withUser(r *http.Request, user model.User) *http.Request {
	return r.WithContext(ContextWithUser(r.Context(), user))
}
