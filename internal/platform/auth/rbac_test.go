package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRoles(t *testing.T, mw echo.MiddlewareFunc, roles []string) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRolesKey, roles)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		held     []string
		want     int
	}{
		{"exact match", []string{RoleProvider}, []string{RoleProvider}, http.StatusOK},
		{"one of several", []string{RoleProvider, RoleInfusionAdmin}, []string{RoleInfusionAdmin}, http.StatusOK},
		{"admin override", []string{RolePharmacy}, []string{RoleAdmin}, http.StatusOK},
		{"wrong role", []string{RoleAdmin}, []string{RoleProvider}, http.StatusForbidden},
		{"no roles", []string{RoleProvider}, nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := requestWithRoles(t, RequireRole(tt.required...), tt.held)
			if got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}
