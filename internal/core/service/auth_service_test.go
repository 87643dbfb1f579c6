package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/secureapi/secure-api/internal/core/domain"
	"github.com/secureapi/secure-api/internal/core/security"
)

type stubLimiter struct {
	blockedFor time.Duration
	blockedErr error
	failures   map[string]int
	resets     map[string]int
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{failures: map[string]int{}, resets: map[string]int{}}
}

func (l *stubLimiter) Blocked(_ context.Context, _ string) (time.Duration, error) {
	return l.blockedFor, l.blockedErr
}

func (l *stubLimiter) RecordFailure(_ context.Context, key string) error {
	l.failures[key]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, key string) error {
	l.resets[key]++
	return nil
}

func newTestAuthService(t *testing.T, repo *stubUserRepo, opts ...AuthOption) (*AuthService, *security.TokenCodec) {
	t.Helper()
	codec, err := security.NewTokenCodec([]byte("secret"), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return NewAuthService(repo, security.NewBcryptHasher(bcrypt.MinCost), codec, zerolog.Nop(), opts...), codec
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	user, err := svc.Register(context.Background(), "alice", "pass123", "Alice A.")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Username != "alice" || user.DisplayName != "Alice A." {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_DefaultsDisplayName(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo())

	user, err := svc.Register(context.Background(), "bob", "pass", "")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.DisplayName != "bob" {
		t.Fatalf("expected display name to default to username, got %q", user.DisplayName)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo())

	if _, err := svc.Register(context.Background(), "", "pass", "x"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "", "x"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := svc.Register(context.Background(), "bob", string(long), "x"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for long password, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	first, err := svc.Register(context.Background(), "bob", "pass", "Bob")
	if err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "pass2", "Bobby"); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	stored, _ := repo.FindByUsername(context.Background(), "bob")
	if stored.PasswordHash != first.PasswordHash || stored.DisplayName != "Bob" {
		t.Fatalf("first registration was modified: %+v", stored)
	}
}

func TestAuthService_Register_ConcurrentSameUsername(t *testing.T) {
	repo := newStubUserRepo()
	barrier := &sync.WaitGroup{}
	barrier.Add(2)
	repo.existsBarrier = barrier
	svc, _ := newTestAuthService(t, repo)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), "carol", "pass", "Carol")
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrDuplicateUsername):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != 1 {
		t.Fatalf("expected one success and one duplicate, got ok=%d dup=%d", ok, dup)
	}
}

func TestAuthService_Login_AfterRegister(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), "dave", "s3cret", "Dave"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(context.Background(), "dave", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Username != "dave" || res.DisplayName != "Dave" || res.Token == "" {
		t.Fatalf("unexpected login result: %+v", res)
	}

	sub, err := codec.Verify(res.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if sub != "dave" {
		t.Fatalf("expected subject dave, got %q", sub)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)
	_, _ = svc.Register(context.Background(), "erin", "goodpass", "Erin")

	_, wrongPass := svc.Login(context.Background(), "erin", "badpass")
	_, noUser := svc.Login(context.Background(), "ghost", "badpass")
	_, emptyPass := svc.Login(context.Background(), "erin", "")

	for _, err := range []error{wrongPass, noUser, emptyPass} {
		if !errors.Is(err, domain.ErrAuthenticationFailed) {
			t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
		}
	}
	if wrongPass.Error() != noUser.Error() {
		t.Fatalf("failure messages differ: %q vs %q", wrongPass, noUser)
	}
}

func TestAuthService_Login_StoreError(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("connection refused")
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Login(context.Background(), "frank", "pass")
	if err == nil || errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	limiter := newStubLimiter()
	limiter.blockedFor = 5 * time.Minute
	audit := &stubAuditSink{}
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo, WithLoginLimiter(limiter), WithAuditSink(audit))

	_, err := svc.Login(context.Background(), "gina", "pass")
	var throttled *domain.ThrottledError
	if !errors.As(err, &throttled) || throttled.RetryAfter != 5*time.Minute {
		t.Fatalf("expected ThrottledError, got %v", err)
	}
	if !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if kinds := audit.kinds(); len(kinds) != 1 || kinds[0] != domain.AuthEventLoginThrottled {
		t.Fatalf("unexpected audit events: %v", kinds)
	}
}

func TestAuthService_Login_LimiterBookkeeping(t *testing.T) {
	limiter := newStubLimiter()
	audit := &stubAuditSink{}
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo, WithLoginLimiter(limiter), WithAuditSink(audit))
	_, _ = svc.Register(context.Background(), "hank", "pass", "Hank")

	_, _ = svc.Login(context.Background(), "hank", "wrong")
	if _, err := svc.Login(context.Background(), "hank", "pass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if limiter.failures["hank"] != 1 || limiter.resets["hank"] != 1 {
		t.Fatalf("unexpected limiter state: failures=%v resets=%v", limiter.failures, limiter.resets)
	}
	want := []domain.AuthEventKind{domain.AuthEventRegistered, domain.AuthEventLoginFailure, domain.AuthEventLoginSuccess}
	got := audit.kinds()
	if len(got) != len(want) {
		t.Fatalf("unexpected audit events: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAuthService_Login_LimiterUnavailableFailsOpen(t *testing.T) {
	limiter := newStubLimiter()
	limiter.blockedErr = errors.New("redis down")
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo, WithLoginLimiter(limiter))
	_, _ = svc.Register(context.Background(), "ivy", "pass", "Ivy")

	if _, err := svc.Login(context.Background(), "ivy", "pass"); err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newTestAuthService(t, repo)
	_, _ = svc.Register(context.Background(), "jack", "pass", "Jack")

	tok, _ := codec.Mint("jack")
	p, err := svc.Authenticate(context.Background(), tok)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.Username != "jack" || p.DisplayName != "Jack" {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestAuthService_Authenticate_BadToken(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo())

	_, err := svc.Authenticate(context.Background(), "garbage")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if !errors.Is(err, security.ErrTokenMalformed) {
		t.Fatalf("expected cause ErrTokenMalformed, got %v", err)
	}
}

func TestAuthService_Authenticate_DeletedUser(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newTestAuthService(t, repo)
	_, _ = svc.Register(context.Background(), "kate", "pass", "Kate")
	tok, _ := codec.Mint("kate")
	repo.delete("kate")

	_, err := svc.Authenticate(context.Background(), tok)
	if !errors.Is(err, domain.ErrUnauthenticated) || !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected unauthenticated user-not-found, got %v", err)
	}
}

// recordingHasher wraps a real hasher and records every hash Verify is
// asked to compare against.
type recordingHasher struct {
	*security.BcryptHasher
	mu       sync.Mutex
	verified []string
}

func (h *recordingHasher) Verify(plaintext, hash string) bool {
	h.mu.Lock()
	h.verified = append(h.verified, hash)
	h.mu.Unlock()
	return h.BcryptHasher.Verify(plaintext, hash)
}

func TestAuthService_Login_UnknownUserComparesPlaceholderHash(t *testing.T) {
	codec, err := security.NewTokenCodec([]byte("secret"), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	hasher := &recordingHasher{BcryptHasher: security.NewBcryptHasher(bcrypt.MinCost)}
	svc := NewAuthService(newStubUserRepo(), hasher, codec, zerolog.Nop())

	if svc.dummyHash == "" {
		t.Fatalf("placeholder hash was not prepared")
	}

	_, err = svc.Login(context.Background(), "nobody", "guess")
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if len(hasher.verified) != 1 || hasher.verified[0] != svc.dummyHash {
		t.Fatalf("expected one comparison against the placeholder hash, got %v", hasher.verified)
	}
	if !hasher.BcryptHasher.Verify(placeholderPassword, svc.dummyHash) {
		t.Fatalf("placeholder hash is not a real bcrypt digest")
	}
}

func TestAuthService_Login_LimiterKeyedByClientIP(t *testing.T) {
	limiter := newStubLimiter()
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo, WithLoginLimiter(limiter))
	_, _ = svc.Register(context.Background(), "lena", "pass", "Lena")

	attacker := domain.WithClientIP(context.Background(), "203.0.113.7")
	owner := domain.WithClientIP(context.Background(), "198.51.100.2")

	_, _ = svc.Login(attacker, "lena", "wrong")
	_, _ = svc.Login(attacker, "lena", "wrong")
	if _, err := svc.Login(owner, "lena", "pass"); err != nil {
		t.Fatalf("owner login failed: %v", err)
	}

	if limiter.failures["lena|203.0.113.7"] != 2 {
		t.Fatalf("failures not scoped to the attacking address: %v", limiter.failures)
	}
	if limiter.failures["lena|198.51.100.2"] != 0 || limiter.resets["lena|198.51.100.2"] != 1 {
		t.Fatalf("owner key touched unexpectedly: failures=%v resets=%v", limiter.failures, limiter.resets)
	}
	if limiter.resets["lena|203.0.113.7"] != 0 {
		t.Fatalf("owner login reset the attacker's counter")
	}
}
