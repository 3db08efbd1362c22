package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

type stubIdentityRepo struct {
	mu         sync.Mutex
	byID       map[string]*domain.Identity
	workers    map[string]*domain.WorkerProfile
	businesses map[string]*domain.BusinessProfile
	seq        int
	findErr    error
	lookups    int
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{
		byID:       make(map[string]*domain.Identity),
		workers:    make(map[string]*domain.WorkerProfile),
		businesses: make(map[string]*domain.BusinessProfile),
	}
}

func cloneIdentity(i *domain.Identity) *domain.Identity {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}

func (r *stubIdentityRepo) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, i := range r.byID {
		if i.Email == email {
			return cloneIdentity(i), nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.findErr != nil {
		return nil, r.findErr
	}
	i, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return cloneIdentity(i), nil
}

func (r *stubIdentityRepo) Create(_ context.Context, identity *domain.Identity, worker *domain.WorkerProfile, business *domain.BusinessProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.byID {
		if i.Email == identity.Email {
			return domain.ErrIdentityExists
		}
	}
	r.seq++
	identity.ID = "id-" + string(rune('a'+r.seq-1))
	r.byID[identity.ID] = cloneIdentity(identity)
	if worker != nil {
		w := *worker
		w.IdentityID = identity.ID
		r.workers[identity.ID] = &w
	}
	if business != nil {
		b := *business
		b.IdentityID = identity.ID
		r.businesses[identity.ID] = &b
	}
	return nil
}

func (r *stubIdentityRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	i.PasswordHash = hash
	return nil
}

func (r *stubIdentityRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	i.Deleted = true
	return nil
}

func (r *stubIdentityRepo) SetSuspended(_ context.Context, id string, suspended bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	i.Suspended = suspended
	return nil
}

func (r *stubIdentityRepo) SwitchProfile(_ context.Context, id string, kind domain.ProfileKind, role domain.Role, worker *domain.WorkerProfile, business *domain.BusinessProfile) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	if _, exists := r.workers[id]; worker != nil && !exists {
		w := *worker
		w.IdentityID = id
		r.workers[id] = &w
	}
	if _, exists := r.businesses[id]; business != nil && !exists {
		b := *business
		b.IdentityID = id
		r.businesses[id] = &b
	}
	i.DefaultProfile = kind
	i.Role = role
	return cloneIdentity(i), nil
}

func (r *stubIdentityRepo) Profiles(_ context.Context, id string) (*domain.WorkerProfile, *domain.BusinessProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.workers[id], r.businesses[id], nil
}

type stubOTPStore struct {
	codes map[string]string
	ttl   time.Duration
}

func newStubOTPStore() *stubOTPStore {
	return &stubOTPStore{codes: make(map[string]string)}
}

func (s *stubOTPStore) Save(_ context.Context, email, code string, ttl time.Duration) error {
	s.codes[email] = code
	s.ttl = ttl
	return nil
}

func (s *stubOTPStore) Consume(_ context.Context, email, code string) (bool, error) {
	stored, ok := s.codes[email]
	if !ok || stored != code {
		return false, nil
	}
	delete(s.codes, email)
	return true, nil
}

type stubThrottle struct {
	seen map[string]bool
}

func (t *stubThrottle) Allow(_ context.Context, key string, _ time.Duration) (bool, error) {
	if t.seen[key] {
		return false, nil
	}
	t.seen[key] = true
	return true, nil
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (e *recordingEmitter) Emit(ev domain.AuthEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *recordingEmitter) last() domain.AuthEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.events) == 0 {
		return domain.AuthEvent{}
	}
	return e.events[len(e.events)-1]
}

type authFixture struct {
	svc    *AuthService
	repo   *stubIdentityRepo
	otps   *stubOTPStore
	events *recordingEmitter
	tokens *TokenService
}

func newAuthFixture(revalidate bool) *authFixture {
	repo := newStubIdentityRepo()
	otps := newStubOTPStore()
	events := &recordingEmitter{}
	tokens := NewTokenService("secret", time.Hour, 24*time.Hour)
	svc := NewAuthService(repo, tokens, otps, nil, events, AuthOptions{
		RevalidateOnRefresh: revalidate,
		BcryptCost:          bcrypt.MinCost,
	}, zerolog.Nop())
	return &authFixture{svc: svc, repo: repo, otps: otps, events: events, tokens: tokens}
}

func signUpInput(email string, kind domain.ProfileKind) ports.SignUpInput {
	return ports.SignUpInput{
		Email:       email,
		Password:    "12345678",
		FirstName:   "A",
		LastName:    "B",
		ProfileType: kind,
	}
}

func TestAuthService_SignUpThenSignIn(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()

	created, err := f.svc.SignUp(ctx, signUpInput("A@B.com ", domain.ProfileWorker))
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if created.Identity.Email != "a@b.com" {
		t.Fatalf("expected normalized email, got %q", created.Identity.Email)
	}
	if created.Identity.PasswordHash == "12345678" {
		t.Fatalf("expected password to be hashed")
	}
	if _, ok := f.repo.workers[created.Identity.ID]; !ok {
		t.Fatalf("expected worker profile to be created")
	}
	if f.events.last().Type != domain.EventSignedUp {
		t.Fatalf("expected signed_up event, got %q", f.events.last().Type)
	}

	session, err := f.svc.SignIn(ctx, "a@b.com", "12345678")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if session.Tokens.AccessToken == "" || session.Tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", session.Tokens)
	}

	claims, kind, err := f.tokens.Verify(session.Tokens.AccessToken)
	if err != nil || kind != domain.TokenAccess {
		t.Fatalf("access token did not verify: kind=%s err=%v", kind, err)
	}
	if claims.ID != created.Identity.ID || claims.Role != domain.RoleWorker || claims.DefaultProfile != domain.ProfileWorker {
		t.Fatalf("claims do not match identity: %+v", claims)
	}
}

func TestAuthService_SignUpBusinessCreatesSluggedProfile(t *testing.T) {
	f := newAuthFixture(true)

	session, err := f.svc.SignUp(context.Background(), signUpInput("biz@b.com", domain.ProfileBusiness))
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if session.Identity.Role != domain.RoleBusiness {
		t.Fatalf("expected BUSINESS role, got %s", session.Identity.Role)
	}
	b, ok := f.repo.businesses[session.Identity.ID]
	if !ok {
		t.Fatalf("expected business profile to be created")
	}
	if b.Name != "A B" || len(b.Slug) <= len("a-b-") {
		t.Fatalf("unexpected business profile: %+v", b)
	}
}

func TestAuthService_SignUpDuplicate(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()

	if _, err := f.svc.SignUp(ctx, signUpInput("a@b.com", domain.ProfileWorker)); err != nil {
		t.Fatalf("first SignUp failed: %v", err)
	}
	if _, err := f.svc.SignUp(ctx, signUpInput("a@b.com", domain.ProfileBusiness)); !errors.Is(err, domain.ErrIdentityExists) {
		t.Fatalf("expected ErrIdentityExists, got %v", err)
	}
}

func TestAuthService_SignUpRejectsUnknownProfile(t *testing.T) {
	f := newAuthFixture(true)

	_, err := f.svc.SignUp(context.Background(), signUpInput("a@b.com", "ADMIN"))
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthService_SignInFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()
	_, _ = f.svc.SignUp(ctx, signUpInput("a@b.com", domain.ProfileWorker))

	if _, err := f.svc.SignIn(ctx, "ghost@b.com", "12345678"); err != domain.ErrInvalidCredentials {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.svc.SignIn(ctx, "a@b.com", "wrong-pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignInRejectsExternalAccounts(t *testing.T) {
	f := newAuthFixture(true)
	ext := &domain.Identity{Email: "ext@b.com", Role: domain.RoleWorker, DefaultProfile: domain.ProfileWorker}
	if err := f.repo.Create(context.Background(), ext, nil, nil); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := f.svc.SignIn(context.Background(), "ext@b.com", ""); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignInDeletedAndSuspended(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()

	deleted, _ := f.svc.SignUp(ctx, signUpInput("del@b.com", domain.ProfileWorker))
	suspended, _ := f.svc.SignUp(ctx, signUpInput("sus@b.com", domain.ProfileWorker))
	_ = f.repo.SoftDelete(ctx, deleted.Identity.ID)
	_ = f.repo.SetSuspended(ctx, suspended.Identity.ID, true)

	if _, err := f.svc.SignIn(ctx, "del@b.com", "12345678"); err != domain.ErrAccountDeleted {
		t.Fatalf("expected ErrAccountDeleted, got %v", err)
	}
	if _, err := f.svc.SignIn(ctx, "sus@b.com", "12345678"); err != domain.ErrAccountSuspended {
		t.Fatalf("expected ErrAccountSuspended, got %v", err)
	}
}

func TestAuthService_RefreshRevalidatesIdentity(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()
	session, _ := f.svc.SignUp(ctx, signUpInput("a@b.com", domain.ProfileWorker))

	claims, grant, err := f.svc.Refresh(ctx, session.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if claims.ID != session.Identity.ID || grant.Token == "" {
		t.Fatalf("unexpected refresh result: %+v %+v", claims, grant)
	}

	_ = f.repo.SetSuspended(ctx, session.Identity.ID, true)
	if _, _, err := f.svc.Refresh(ctx, session.Tokens.RefreshToken); err != domain.ErrAccountSuspended {
		t.Fatalf("expected ErrAccountSuspended, got %v", err)
	}
}

func TestAuthService_RefreshWithoutRevalidationSkipsStore(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()
	session, _ := f.svc.SignUp(ctx, signUpInput("a@b.com", domain.ProfileWorker))
	_ = f.repo.SoftDelete(ctx, session.Identity.ID)

	before := f.repo.lookups
	if _, _, err := f.svc.Refresh(ctx, session.Tokens.RefreshToken); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if f.repo.lookups != before {
		t.Fatalf("expected no store lookups, got %d", f.repo.lookups-before)
	}
}

func TestAuthService_RefreshRejectsAccessTokens(t *testing.T) {
	f := newAuthFixture(true)
	session, _ := f.svc.SignUp(context.Background(), signUpInput("a@b.com", domain.ProfileWorker))

	if _, _, err := f.svc.Refresh(context.Background(), session.Tokens.AccessToken); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAuthService_RecoverPasswordRejectsSamePassword(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()
	session, _ := f.svc.SignUp(ctx, signUpInput("a@b.com", domain.ProfileWorker))

	if err := f.svc.RecoverPassword(ctx, session.Identity.ID, "a@b.com", "12345678"); err != domain.ErrSamePassword {
		t.Fatalf("expected ErrSamePassword, got %v", err)
	}
	if err := f.svc.RecoverPassword(ctx, session.Identity.ID, "other@b.com", "abcdefgh"); domain.KindOf(err) != domain.KindForbidden {
		t.Fatalf("expected forbidden for mismatched email, got %v", err)
	}
	if err := f.svc.RecoverPassword(ctx, session.Identity.ID, "a@b.com", "abcdefgh"); err != nil {
		t.Fatalf("RecoverPassword returned error: %v", err)
	}
	if _, err := f.svc.SignIn(ctx, "a@b.com", "abcdefgh"); err != nil {
		t.Fatalf("SignIn with new password failed: %v", err)
	}
}

func TestAuthService_OTPResetIsSingleUseAndAllowsSamePassword(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()
	_, _ = f.svc.SignUp(ctx, signUpInput("a@b.com", domain.ProfileWorker))

	if err := f.svc.RequestOTP(ctx, "a@b.com"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}
	code := f.otps.codes["a@b.com"]
	if len(code) != otpDigits {
		t.Fatalf("expected %d digit code, got %q", otpDigits, code)
	}
	if f.otps.ttl != defaultOTPTTL {
		t.Fatalf("expected default ttl, got %v", f.otps.ttl)
	}
	if ev := f.events.last(); ev.Type != domain.EventOTPRequested || ev.Secret != code {
		t.Fatalf("expected otp event carrying the code, got %+v", ev)
	}

	in := ports.ResetPasswordInput{OTP: code, Email: "a@b.com", Password: "12345678"}
	if err := f.svc.ResetPassword(ctx, in); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if err := f.svc.ResetPassword(ctx, in); err != domain.ErrInvalidOTP {
		t.Fatalf("expected ErrInvalidOTP on reuse, got %v", err)
	}
}

func TestAuthService_RequestOTPUnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture(true)

	if err := f.svc.RequestOTP(context.Background(), "ghost@b.com"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(f.otps.codes) != 0 || len(f.events.events) != 0 {
		t.Fatalf("expected no code and no event for unknown email")
	}
}

func TestAuthService_DeleteAccount(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()
	session, _ := f.svc.SignUp(ctx, signUpInput("a@b.com", domain.ProfileWorker))

	if err := f.svc.DeleteAccount(ctx, session.Identity.ID); err != nil {
		t.Fatalf("DeleteAccount returned error: %v", err)
	}
	if !f.repo.byID[session.Identity.ID].Deleted {
		t.Fatalf("expected identity to be soft deleted")
	}
	if err := f.svc.DeleteAccount(ctx, session.Identity.ID); err != domain.ErrAccountDeleted {
		t.Fatalf("expected ErrAccountDeleted on second delete, got %v", err)
	}
}

func TestAuthService_SwitchProfile(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()
	session, _ := f.svc.SignUp(ctx, signUpInput("a@b.com", domain.ProfileWorker))

	switched, err := f.svc.SwitchProfile(ctx, session.Identity.ID, domain.ProfileBusiness)
	if err != nil {
		t.Fatalf("SwitchProfile returned error: %v", err)
	}
	if switched.Identity.Role != domain.RoleBusiness || switched.Identity.DefaultProfile != domain.ProfileBusiness {
		t.Fatalf("unexpected identity after switch: %+v", switched.Identity)
	}
	claims, _, err := f.tokens.Verify(switched.Tokens.AccessToken)
	if err != nil || claims.Role != domain.RoleBusiness {
		t.Fatalf("expected re-issued BUSINESS token, claims=%+v err=%v", claims, err)
	}

	account, err := f.svc.Account(ctx, session.Identity.ID)
	if err != nil {
		t.Fatalf("Account returned error: %v", err)
	}
	if account.Worker == nil || account.Business == nil {
		t.Fatalf("expected both profiles, got %+v", account)
	}
}

func TestAuthService_SwitchProfileKeepsStaffRole(t *testing.T) {
	f := newAuthFixture(true)
	admin := &domain.Identity{Email: "admin@b.com", Role: domain.RoleAdmin, DefaultProfile: domain.ProfileWorker}
	_ = f.repo.Create(context.Background(), admin, &domain.WorkerProfile{}, nil)

	switched, err := f.svc.SwitchProfile(context.Background(), admin.ID, domain.ProfileBusiness)
	if err != nil {
		t.Fatalf("SwitchProfile returned error: %v", err)
	}
	if switched.Identity.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN role to be kept, got %s", switched.Identity.Role)
	}
}

func TestAuthService_RequestOTPThrottled(t *testing.T) {
	f := newAuthFixture(true)
	f.svc.throttle = &stubThrottle{seen: map[string]bool{}}
	ctx := context.Background()
	_, _ = f.svc.SignUp(ctx, signUpInput("a@b.com", domain.ProfileWorker))

	if err := f.svc.RequestOTP(ctx, "a@b.com"); err != nil {
		t.Fatalf("first RequestOTP returned error: %v", err)
	}
	first := f.otps.codes["a@b.com"]
	sent := len(f.events.events)

	if err := f.svc.RequestOTP(ctx, "a@b.com"); err != nil {
		t.Fatalf("throttled RequestOTP returned error: %v", err)
	}
	if f.otps.codes["a@b.com"] != first || len(f.events.events) != sent {
		t.Fatalf("expected throttled request to leave the code and events untouched")
	}
}
