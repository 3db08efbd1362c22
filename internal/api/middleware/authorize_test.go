package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

type stubChecker struct {
	calls  int
	denied bool
	err    error
}

func (s *stubChecker) HasAny(_ context.Context, _ string, _ []domain.RestrictionKind) (bool, error) {
	s.calls++
	return s.denied, s.err
}

func runAuthorize(t *testing.T, p Policy, claims *domain.Claims, checker *stubChecker) (bool, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if claims != nil {
		SetIdentity(c, claims)
	}
	called := false
	err := Authorize(p, checker)(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return called, err
}

func TestAuthorize_NoIdentity(t *testing.T) {
	checker := &stubChecker{}
	called, err := runAuthorize(t, Policy{Roles: []domain.Role{domain.RoleWorker}, Forbidden: []domain.RestrictionKind{domain.RestrictApplyJobs}}, nil, checker)
	if called || !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, called=%v err=%v", called, err)
	}
	if checker.calls != 0 {
		t.Fatalf("no restriction lookup before authentication")
	}
}

func TestAuthorize_RoleOutsideSet(t *testing.T) {
	checker := &stubChecker{}
	claims := &domain.Claims{ID: "b1", Role: domain.RoleBusiness}
	called, err := runAuthorize(t, Policy{Roles: []domain.Role{domain.RoleWorker}}, claims, checker)
	if called || !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, called=%v err=%v", called, err)
	}
}

func TestAuthorize_ExactRoleMembership(t *testing.T) {
	// ADMIN is a substring of SUPER_ADMIN; only exact membership may pass.
	claims := &domain.Claims{ID: "a1", Role: domain.RoleAdmin}
	called, err := runAuthorize(t, Policy{Roles: []domain.Role{domain.RoleSuperAdmin}}, claims, &stubChecker{})
	if called || !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, called=%v err=%v", called, err)
	}
}

func TestAuthorize_AnyIdentityWhenRolesEmpty(t *testing.T) {
	checker := &stubChecker{}
	called, err := runAuthorize(t, Policy{}, &domain.Claims{ID: "w1", Role: domain.RoleWorker}, checker)
	if !called || err != nil {
		t.Fatalf("expected pass, err=%v", err)
	}
	if checker.calls != 0 {
		t.Fatalf("restrictions are only queried when the policy forbids some")
	}
}

func TestAuthorize_Restricted(t *testing.T) {
	checker := &stubChecker{denied: true}
	p := Policy{Roles: []domain.Role{domain.RoleWorker}, Forbidden: []domain.RestrictionKind{domain.RestrictApplyJobs}}
	called, err := runAuthorize(t, p, &domain.Claims{ID: "w1", Role: domain.RoleWorker}, checker)
	if called || !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, called=%v err=%v", called, err)
	}
}

func TestAuthorize_StoreFailureIsInternal(t *testing.T) {
	checker := &stubChecker{err: errors.New("connection reset")}
	p := Policy{Forbidden: []domain.RestrictionKind{domain.RestrictPostJobs}}
	called, err := runAuthorize(t, p, &domain.Claims{ID: "b1", Role: domain.RoleBusiness}, checker)
	if called || err == nil {
		t.Fatalf("expected an error, called=%v", called)
	}
	if domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("expected internal kind, got %v", domain.KindOf(err))
	}
}
