package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/trek-api/internal/application/auth"
	"github.com/jhoicas/trek-api/internal/application/session"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	apphttp "github.com/jhoicas/trek-api/internal/interfaces/http"
	"github.com/jhoicas/trek-api/internal/testutil"
	pkgjwt "github.com/jhoicas/trek-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testSessionID = "00000000-0000-0000-0000-0000000000aa"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "trek-api-test"
	testExpMin    = 60
)

// guardedApp monta los mismos grupos de roles que el router sobre handlers que solo
// devuelven el rol leído del contexto.
func guardedApp(t *testing.T) (*fiber.App, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), &session.Session{
		ID: testSessionID, UserID: testUserID, CompanyID: testCompanyID,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	sessions := auth.NewAuthUseCase(testutil.NewStore().Users(), store, auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
	})

	echo := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"session_id": apphttp.GetSessionID(c),
			"user_id":    apphttp.GetUserID(c),
			"company_id": apphttp.GetCompanyID(c),
			"role":       apphttp.GetRole(c),
		})
	}
	app := fiber.New()
	authn := apphttp.AuthMiddleware(testJWTSecret, sessions)
	app.Get("/orders/mine", authn, echo)
	app.Get("/dispatch/orders", authn, apphttp.RequireRole(entity.RoleAdmin, entity.RoleDispatch), echo)
	app.Get("/hr/reports/payroll", authn, apphttp.RequireRole(entity.RoleAdmin, entity.RoleHR), echo)
	app.Get("/companies", authn, apphttp.RequireRole(entity.RoleAdmin), echo)
	return app, store
}

func bearer(t *testing.T, role string, expMinutes int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testSessionID, testUserID, testCompanyID, role, testIssuer, expMinutes)
	require.NoError(t, err)
	return "Bearer " + tok
}

func get(t *testing.T, app *fiber.App, path, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

// ── RBAC por ruta ───────────────────────────────────────────────────────────

func TestRequireRole_RoutesByRole(t *testing.T) {
	app, _ := guardedApp(t)

	// filas: rol; columnas: mine, dispatch, payroll, companies
	matrix := map[string][4]int{
		entity.RoleEmployee: {200, 403, 403, 403},
		entity.RoleDispatch: {200, 200, 403, 403},
		entity.RoleHR:       {200, 403, 200, 403},
		entity.RoleAdmin:    {200, 200, 200, 200},
	}
	paths := [4]string{"/orders/mine", "/dispatch/orders", "/hr/reports/payroll", "/companies"}

	for role, want := range matrix {
		for i, path := range paths {
			t.Run(role+path, func(t *testing.T) {
				status, body := get(t, app, path, bearer(t, role, testExpMin))
				assert.Equal(t, want[i], status)
				if want[i] == http.StatusForbidden {
					assert.Contains(t, body, "FORBIDDEN")
				}
			})
		}
	}
}

func TestRequireRole_TokenWithoutRole(t *testing.T) {
	app, _ := guardedApp(t)

	status, body := get(t, app, "/dispatch/orders", bearer(t, "", testExpMin))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "MISSING_ROLE")

	// sin RequireRole basta con la sesión
	status, _ = get(t, app, "/orders/mine", bearer(t, "", testExpMin))
	assert.Equal(t, http.StatusOK, status)
}

// ── Token y sesión ──────────────────────────────────────────────────────────

func TestAuthMiddleware_RejectsBadCredentials(t *testing.T) {
	app, _ := guardedApp(t)

	cases := map[string]string{
		"sin header":     "",
		"sin esquema":    "abc.def.ghi",
		"token corrupto": "Bearer token.invalido.aqui",
		"token expirado": bearer(t, entity.RoleAdmin, -1),
		"secreto distinto": func() string {
			tok, err := pkgjwt.Generate("otro-secreto", testSessionID, testUserID, testCompanyID, entity.RoleAdmin, testIssuer, testExpMin)
			require.NoError(t, err)
			return "Bearer " + tok
		}(),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			status, _ := get(t, app, "/orders/mine", header)
			assert.Equal(t, http.StatusUnauthorized, status)
		})
	}
}

func TestAuthMiddleware_LoadsSessionIdentity(t *testing.T) {
	app, _ := guardedApp(t)

	status, body := get(t, app, "/dispatch/orders", bearer(t, entity.RoleDispatch, testExpMin))
	require.Equal(t, http.StatusOK, status)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, map[string]string{
		"session_id": testSessionID,
		"user_id":    testUserID,
		"company_id": testCompanyID,
		"role":       entity.RoleDispatch,
	}, got)
}

func TestAuthMiddleware_ClosedSession(t *testing.T) {
	app, store := guardedApp(t)
	token := bearer(t, entity.RoleEmployee, testExpMin)

	status, _ := get(t, app, "/orders/mine", token)
	require.Equal(t, http.StatusOK, status)

	// logout en otro dispositivo: el JWT sigue vigente pero la sesión ya no existe
	require.NoError(t, store.Delete(context.Background(), testSessionID))
	status, body := get(t, app, "/orders/mine", token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "SESSION_CLOSED")
}
