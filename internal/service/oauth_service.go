package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"todo_webapp/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var ErrOAuthState = errors.New("invalid or expired oauth state")

// OAuthProvider is an external identity provider
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	// Exchange trades the callback code for the user's profile
	Exchange(ctx context.Context, code string) (*OAuthProfile, error)
}

// OAuthService runs the authorization code flow for the configured providers
type OAuthService struct {
	providers map[string]OAuthProvider
	states    NonceStore
	users     *UserService
}

func NewOAuthService(states NonceStore, users *UserService, providers ...OAuthProvider) *OAuthService {
	m := make(map[string]OAuthProvider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &OAuthService{providers: m, states: states, users: users}
}

// Providers returns the enabled provider names, sorted
func (s *OAuthService) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Begin returns the provider URL the browser is redirected to
func (s *OAuthService) Begin(ctx context.Context, provider string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", fmt.Errorf("oauth provider %q: %w", provider, ErrNotFound)
	}
	state := uuid.NewString()
	if err := s.states.Put(ctx, state, provider, oauthStateTTL); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return p.AuthCodeURL(state), nil
}

// Complete validates the callback state, exchanges the code and resolves
// the local user.
func (s *OAuthService) Complete(ctx context.Context, provider, state, code string) (*domain.User, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, fmt.Errorf("oauth provider %q: %w", provider, ErrNotFound)
	}
	if state == "" || code == "" {
		return nil, ErrOAuthState
	}

	issuedFor, ok, err := s.states.Take(ctx, state)
	if err != nil {
		return nil, err
	}
	if !ok || issuedFor != provider {
		return nil, ErrOAuthState
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s exchange: %w", provider, err)
	}
	profile.Provider = provider
	return s.users.FindOrCreateOAuthUser(ctx, *profile)
}

// GitHubProvider logs users in with a GitHub account
type GitHubProvider struct {
	cfg     *oauth2.Config
	apiBase string
}

func NewGitHubProvider(clientID, clientSecret, redirectURL string) *GitHubProvider {
	return &GitHubProvider{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBase: "https://api.github.com",
	}
}

func (p *GitHubProvider) Name() string { return "github" }

func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*OAuthProfile, error) {
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	client := p.cfg.Client(ctx, tok)

	var u githubUser
	if err := getJSON(ctx, client, p.apiBase+"/user", &u); err != nil {
		return nil, err
	}

	// the profile email is empty when the user keeps it private
	email := u.Email
	if email == "" {
		var emails []githubEmail
		if err := getJSON(ctx, client, p.apiBase+"/user/emails", &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}

	first, last := splitName(u.Name)
	if first == "" {
		first = u.Login
	}
	return &OAuthProfile{
		Subject:   strconv.FormatInt(u.ID, 10),
		Email:     email,
		FirstName: first,
		LastName:  last,
	}, nil
}

// GoogleProvider logs users in with a Google account
type GoogleProvider struct {
	cfg *oauth2.Config
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{goauth2.OpenIDScope, goauth2.UserinfoEmailScope, goauth2.UserinfoProfileScope},
		},
	}
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*OAuthProfile, error) {
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	svc, err := goauth2.NewService(ctx, option.WithTokenSource(p.cfg.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("google userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}

	email := info.Email
	if info.VerifiedEmail != nil && !*info.VerifiedEmail {
		email = ""
	}
	return &OAuthProfile{
		Subject:   info.Id,
		Email:     email,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
