package credentials

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestStatic(t *testing.T) {
	tests := []struct {
		name    string
		creds   Static
		wantErr bool
	}{
		{"complete", Static{Key: "k", Token: "t"}, false},
		{"missing token", Static{Key: "k"}, true},
		{"missing key", Static{Token: "t"}, true},
		{"empty", Static{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.creds.Credentials(context.Background())
			if tt.wantErr {
				if !errors.Is(err, ErrNoCredentials) {
					t.Errorf("expected ErrNoCredentials, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Key != "k" || got.Token != "t" {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestEnv_ReadsOnce(t *testing.T) {
	t.Setenv(EnvAPIKey, "first-key")
	t.Setenv(EnvAPIToken, "first-token")

	env := NewEnv()
	got, err := env.Credentials(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Key != "first-key" || got.Token != "first-token" {
		t.Errorf("got %+v", got)
	}

	t.Setenv(EnvAPIKey, "second-key")
	got, _ = env.Credentials(context.Background())
	if got.Key != "first-key" {
		t.Errorf("Env should resolve once per process, got key %q", got.Key)
	}
}

func TestEnv_Missing(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIToken, "")

	_, err := NewEnv().Credentials(context.Background())
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

type failingProvider struct{ err error }

func (f failingProvider) Credentials(context.Context) (Credentials, error) {
	return Credentials{}, f.err
}

func TestChain(t *testing.T) {
	boom := errors.New("keychain locked")

	tests := []struct {
		name      string
		chain     Chain
		wantKey   string
		wantErrIs error
	}{
		{
			name:    "first complete wins",
			chain:   Chain{Static{Key: "a", Token: "1"}, Static{Key: "b", Token: "2"}},
			wantKey: "a",
		},
		{
			name:    "skips providers without credentials",
			chain:   Chain{Static{}, Static{Key: "b", Token: "2"}},
			wantKey: "b",
		},
		{
			name:      "other errors stop the chain",
			chain:     Chain{failingProvider{boom}, Static{Key: "b", Token: "2"}},
			wantErrIs: boom,
		},
		{
			name:      "nothing configured",
			chain:     Chain{Static{}, Static{}},
			wantErrIs: ErrNoCredentials,
		},
		{
			name:      "empty chain",
			chain:     Chain{},
			wantErrIs: ErrNoCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.chain.Credentials(context.Background())
			if tt.wantErrIs != nil {
				if !errors.Is(err, tt.wantErrIs) {
					t.Errorf("expected %v, got %v", tt.wantErrIs, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", got.Key, tt.wantKey)
			}
		})
	}
}

func TestCredentials_StringHidesSecrets(t *testing.T) {
	c := Credentials{Key: "super-secret-key", Token: "super-secret-token"}
	s := c.String()
	if strings.Contains(s, "secret") {
		t.Errorf("String() leaked secrets: %q", s)
	}
}

func TestKeyring_RoundTrip(t *testing.T) {
	keyring.MockInit()
	k := NewKeyring("")

	if _, err := k.Credentials(context.Background()); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("empty keychain should give ErrNoCredentials, got %v", err)
	}

	if err := k.Save(Credentials{Key: "k", Token: "t"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := k.Credentials(context.Background())
	if err != nil {
		t.Fatalf("Credentials failed: %v", err)
	}
	if got.Key != "k" || got.Token != "t" {
		t.Errorf("got %+v", got)
	}

	if err := k.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := k.Delete(); err != nil {
		t.Errorf("deleting a missing entry should succeed, got %v", err)
	}
	if _, err := k.Credentials(context.Background()); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials after delete, got %v", err)
	}
}

func TestKeyring_SaveIncomplete(t *testing.T) {
	keyring.MockInit()
	if err := NewKeyring("work").Save(Credentials{Key: "k"}); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestKeyring_Corrupt(t *testing.T) {
	keyring.MockInit()
	if err := keyring.Set(KeychainService, DefaultAccount, "not json"); err != nil {
		t.Fatal(err)
	}
	_, err := NewKeyring(DefaultAccount).Credentials(context.Background())
	if err == nil || errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected a corrupt-entry error, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	var gotPath, gotKey, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotToken = r.URL.Query().Get("token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"5abbe4b7ddc1b351ef961414","username":"ada","fullName":"Ada Lovelace"}`))
	}))
	defer server.Close()

	m, err := Verify(context.Background(), Credentials{Key: "k", Token: "t"}, server.URL, server.Client())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if gotPath != "/members/me" {
		t.Errorf("path = %q, want /members/me", gotPath)
	}
	if gotKey != "k" || gotToken != "t" {
		t.Errorf("credentials not sent: key=%q token=%q", gotKey, gotToken)
	}
	if m.Username != "ada" || m.FullName != "Ada Lovelace" {
		t.Errorf("member = %+v", m)
	}
}

func TestVerify_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer server.Close()

	if _, err := Verify(context.Background(), Credentials{Key: "k", Token: "bad"}, server.URL, server.Client()); err == nil {
		t.Error("expected an error for rejected credentials")
	}
}

func TestVerify_Incomplete(t *testing.T) {
	if _, err := Verify(context.Background(), Credentials{Key: "k"}, "", nil); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestForSource(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIToken, "")

	stored := NewKeyring(DefaultAccount)
	if err := stored.Save(Credentials{Key: "kr-key", Token: "kr-token"}); err != nil {
		t.Fatal(err)
	}
	explicit := Credentials{Key: "cfg-key", Token: "cfg-token"}

	tests := []struct {
		name     string
		source   string
		explicit Credentials
		wantKey  string
		wantErr  error
	}{
		{"auto prefers explicit", SourceAuto, explicit, "cfg-key", nil},
		{"auto falls back to keyring", SourceAuto, Credentials{}, "kr-key", nil},
		{"env ignores keyring", SourceEnv, Credentials{}, "", ErrNoCredentials},
		{"env uses explicit", SourceEnv, explicit, "cfg-key", nil},
		{"keyring ignores explicit", SourceKeyring, explicit, "kr-key", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := ForSource(tt.source, DefaultAccount, tt.explicit).Credentials(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if creds.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", creds.Key, tt.wantKey)
			}
		})
	}
}
