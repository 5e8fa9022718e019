package test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fides/internal/consent"
	consenthandler "fides/internal/consent/handler"
	"fides/internal/credential"
	credentialhandler "fides/internal/credential/handler"
	"fides/internal/jwttoken"
	"fides/internal/platform/clock"
	"fides/internal/risk"
	riskhandler "fides/internal/risk/handler"
	httptransport "fides/internal/transport/http"
	"fides/internal/verification"
	verificationhandler "fides/internal/verification/handler"
	id "fides/pkg/domain"
	"fides/pkg/testutil"
)

const bootstrapAdmin = id.Identity("registry-admin")

type env struct {
	router http.Handler
	jwt    *jwttoken.JWTService
	clock  *clock.Manual
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	source := clock.NewManual(1000)
	jwtService := jwttoken.NewJWTService("test-signing-key", "fides", "fides")
	validator := httptransport.NewJWTAdapter(jwtService)

	router := httptransport.NewRouter(httptransport.Config{
		Logger: logger,
		Clock:  source,
		Handlers: []httptransport.Registrar{
			verificationhandler.New(verification.NewService(verification.NewInMemory(bootstrapAdmin)), logger, validator),
			credentialhandler.New(credential.NewService(credential.NewInMemory(bootstrapAdmin)), logger, validator),
			consenthandler.New(consent.NewService(consent.NewInMemory(bootstrapAdmin)), logger, validator),
			riskhandler.New(risk.NewService(risk.NewInMemory(bootstrapAdmin)), logger, validator),
		},
	})
	return &env{router: router, jwt: jwtService, clock: source}
}

func (e *env) do(t *testing.T, method, path string, body any, caller id.Identity) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = testutil.NewJSONRequest(t, method, path, body)
	} else {
		req = testutil.NewRequest(t, method, path)
	}
	if !caller.IsZero() {
		token, err := e.jwt.GenerateAccessToken(caller, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestRouterEndToEnd(t *testing.T) {
	testutil.Given(t, "the assembled registry router", func(t *testing.T) {
		e := newEnv(t)

		testutil.When(t, "probing health", func(t *testing.T) {
			rec := e.do(t, http.MethodGet, "/healthz", nil, "")
			testutil.Then(t, "it reports ok", func(t *testing.T) {
				require.Equal(t, http.StatusOK, rec.Code)
			})
		})

		testutil.When(t, "calling a registry route without a token", func(t *testing.T) {
			rec := e.do(t, http.MethodGet, "/v1/verification/users/user-1/status", nil, "")
			testutil.Then(t, "it rejects with 401", func(t *testing.T) {
				require.Equal(t, http.StatusUnauthorized, rec.Code)
			})
		})

		testutil.When(t, "walking a verification lifecycle over HTTP", func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/v1/verification/verifiers",
				map[string]string{"verifier": "verifier-1"}, bootstrapAdmin)
			require.Equal(t, http.StatusNoContent, rec.Code)

			rec = e.do(t, http.MethodPost, "/v1/verification/submissions", map[string]string{
				"name":          "Ada Lovelace",
				"document_hash": "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff",
				"metadata":      "passport",
			}, id.Identity("user-1"))
			require.Equal(t, http.StatusAccepted, rec.Code)

			e.clock.Advance(1)
			rec = e.do(t, http.MethodPost, "/v1/verification/users/user-1/verify", nil, id.Identity("verifier-1"))
			require.Equal(t, http.StatusNoContent, rec.Code)

			rec = e.do(t, http.MethodGet, "/v1/verification/users/user-1/verified", nil, id.Identity("anyone"))
			testutil.Then(t, "the user reads back verified", func(t *testing.T) {
				require.Equal(t, http.StatusOK, rec.Code)
				var resp map[string]bool
				testutil.DecodeJSON(t, rec, &resp)
				require.True(t, resp["verified"])
			})
		})

		testutil.When(t, "issuing and revoking a credential over HTTP", func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/v1/credentials/issuers",
				map[string]any{"issuer": "issuer-1", "type": 1}, bootstrapAdmin)
			require.Equal(t, http.StatusNoContent, rec.Code)

			rec = e.do(t, http.MethodPost, "/v1/credentials/users/user-1/credentials", map[string]any{
				"type":       1,
				"expires_at": 5000,
				"data_hash":  "ffeeddccbbaa99887766554433221100ffeeddccbbaa99887766554433221100",
			}, id.Identity("issuer-1"))
			require.Equal(t, http.StatusCreated, rec.Code)
			var issued map[string]uint64
			testutil.DecodeJSON(t, rec, &issued)
			require.Equal(t, uint64(1), issued["id"])

			rec = e.do(t, http.MethodGet, "/v1/credentials/users/user-1/credentials/1/valid", nil, id.Identity("anyone"))
			require.Equal(t, http.StatusOK, rec.Code)
			var valid map[string]bool
			testutil.DecodeJSON(t, rec, &valid)
			require.True(t, valid["valid"])

			rec = e.do(t, http.MethodPost, "/v1/credentials/users/user-1/credentials/1/revoke", nil, id.Identity("issuer-1"))
			require.Equal(t, http.StatusNoContent, rec.Code)

			rec = e.do(t, http.MethodPost, "/v1/credentials/users/user-1/credentials/1/revoke", nil, id.Identity("issuer-1"))
			testutil.Then(t, "a second revoke conflicts", func(t *testing.T) {
				require.Equal(t, http.StatusConflict, rec.Code)
			})
		})

		testutil.When(t, "granting and revoking consent over HTTP", func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/v1/consents/grants",
				map[string]any{"requester": "broker-1", "type": 1, "purpose": "tax filing"}, id.Identity("user-1"))
			require.Equal(t, http.StatusNoContent, rec.Code)

			rec = e.do(t, http.MethodGet, "/v1/consents/users/user-1/requesters/broker-1/types/1/active", nil, id.Identity("broker-1"))
			require.Equal(t, http.StatusOK, rec.Code)
			var active map[string]bool
			testutil.DecodeJSON(t, rec, &active)
			require.True(t, active["active"])

			rec = e.do(t, http.MethodPost, "/v1/consents/grants/revoke",
				map[string]any{"requester": "broker-1", "type": 1}, id.Identity("user-1"))
			require.Equal(t, http.StatusNoContent, rec.Code)

			rec = e.do(t, http.MethodGet, "/v1/consents/users/user-1/requesters/broker-1/types/1/log", nil, id.Identity("user-1"))
			testutil.Then(t, "the audit log holds both events", func(t *testing.T) {
				require.Equal(t, http.StatusOK, rec.Code)
				var count map[string]uint64
				testutil.DecodeJSON(t, rec, &count)
				require.Equal(t, uint64(2), count["count"])
			})
		})

		testutil.When(t, "logging risk activity over HTTP", func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/v1/risk/users/user-1/activities", map[string]any{
				"type":       1,
				"risk_score": 30,
				"metadata":   "web login",
				"ip_hash":    "aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00aa00",
			}, id.Identity("user-1"))
			testutil.Then(t, "the activity is scored", func(t *testing.T) {
				require.Equal(t, http.StatusCreated, rec.Code)
				var resp struct {
					ActivityID uint64 `json:"activity_id"`
					RiskLevel  string `json:"risk_level"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				require.Equal(t, uint64(1), resp.ActivityID)
				require.Equal(t, "low", resp.RiskLevel)
			})
		})
	})
}
