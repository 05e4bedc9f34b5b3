package armory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrUnauthorized indicates the remote service rejected the bearer token.
	ErrUnauthorized = errors.New("armory: token rejected")
	// ErrUnavailable indicates a non-auth remote failure (transport error or
	// unexpected status).
	ErrUnavailable = errors.New("armory: profile service unavailable")
)

// Client defines the interface for remote profile operations.
type Client interface {
	// FetchAccountRoster returns the characters the account currently owns.
	FetchAccountRoster(ctx context.Context, token string) ([]CharacterSummary, error)
	// FetchCharacterDetail returns the guild a character belongs to, or nil
	// when the character has no guild. The returned error is informational:
	// callers must treat a failed detail fetch as "guild unknown", not as a
	// reason to abort.
	FetchCharacterDetail(ctx context.Context, token, realmSlug, name string) (*GuildSummary, error)
	// FetchPlayableClasses returns the playable class index.
	FetchPlayableClasses(ctx context.Context, token string) ([]ClassRef, error)
	// FetchPlayableRaces returns the playable race index.
	FetchPlayableRaces(ctx context.Context, token string) ([]RaceRef, error)
	// FetchRealms returns the realm index for the configured region.
	FetchRealms(ctx context.Context, token string) ([]RealmRef, error)
}

// NewClient creates an HTTP client for the armory profile API.
func NewClient(cfg Config) (Client, error) {
	if !cfg.IsValidRegion() {
		return nil, fmt.Errorf("invalid armory region: %q", cfg.Region)
	}

	// Ensure timeout defaults if not set
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	// Create custom transport with strict timeouts
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration, // Connection setup timeout
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &httpClient{
		cfg:  cfg,
		base: cfg.apiBase(),
		http: &http.Client{
			Timeout:   timeoutDuration,
			Transport: transport,
		},
	}, nil
}

type httpClient struct {
	cfg  Config
	base string
	http *http.Client
}

// accountProfileResponse mirrors the nested account summary payload
// (account -> wow_accounts -> characters).
type accountProfileResponse struct {
	WowAccounts []struct {
		Characters []struct {
			Name  string `json:"name"`
			Level int    `json:"level"`
			Realm struct {
				Slug string `json:"slug"`
			} `json:"realm"`
			PlayableClass struct {
				ID int `json:"id"`
			} `json:"playable_class"`
			PlayableRace struct {
				ID int `json:"id"`
			} `json:"playable_race"`
		} `json:"characters"`
	} `json:"wow_accounts"`
}

// characterProfileResponse carries the slice of the character detail payload
// the engine cares about: the guild block.
type characterProfileResponse struct {
	Guild *struct {
		Name  string `json:"name"`
		Realm struct {
			Slug string `json:"slug"`
		} `json:"realm"`
		Faction struct {
			Type string `json:"type"`
		} `json:"faction"`
	} `json:"guild"`
}

func (c *httpClient) FetchAccountRoster(ctx context.Context, token string) ([]CharacterSummary, error) {
	endpoint := fmt.Sprintf("%s/profile/user/wow?namespace=profile-%s&locale=%s",
		c.base, c.cfg.Region, c.cfg.Locale)

	var payload accountProfileResponse
	if err := c.get(ctx, endpoint, token, &payload); err != nil {
		return nil, err
	}

	// Flatten the sub-account nesting immediately; nothing downstream should
	// know the remote payload shape.
	var roster []CharacterSummary
	for _, account := range payload.WowAccounts {
		for _, ch := range account.Characters {
			roster = append(roster, CharacterSummary{
				Name:      ch.Name,
				RealmSlug: ch.Realm.Slug,
				ClassID:   ch.PlayableClass.ID,
				RaceID:    ch.PlayableRace.ID,
				Level:     ch.Level,
				Region:    c.cfg.Region,
			})
		}
	}

	return roster, nil
}

func (c *httpClient) FetchCharacterDetail(ctx context.Context, token, realmSlug, name string) (*GuildSummary, error) {
	// The profile API addresses characters by lowercased name.
	endpoint := fmt.Sprintf("%s/profile/wow/character/%s/%s?namespace=profile-%s&locale=%s",
		c.base, url.PathEscape(realmSlug), url.PathEscape(strings.ToLower(name)),
		c.cfg.Region, c.cfg.Locale)

	var payload characterProfileResponse
	if err := c.get(ctx, endpoint, token, &payload); err != nil {
		return nil, err
	}

	if payload.Guild == nil {
		return nil, nil
	}

	return &GuildSummary{
		Name:      payload.Guild.Name,
		RealmSlug: payload.Guild.Realm.Slug,
		Region:    c.cfg.Region,
		Faction:   payload.Guild.Faction.Type,
	}, nil
}

func (c *httpClient) FetchPlayableClasses(ctx context.Context, token string) ([]ClassRef, error) {
	endpoint := fmt.Sprintf("%s/data/wow/playable-class/index?namespace=static-%s&locale=%s",
		c.base, c.cfg.Region, c.cfg.Locale)

	var payload struct {
		Classes []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"classes"`
	}
	if err := c.get(ctx, endpoint, token, &payload); err != nil {
		return nil, err
	}

	classes := make([]ClassRef, 0, len(payload.Classes))
	for _, cl := range payload.Classes {
		classes = append(classes, ClassRef{ID: cl.ID, Name: cl.Name})
	}
	return classes, nil
}

func (c *httpClient) FetchPlayableRaces(ctx context.Context, token string) ([]RaceRef, error) {
	endpoint := fmt.Sprintf("%s/data/wow/playable-race/index?namespace=static-%s&locale=%s",
		c.base, c.cfg.Region, c.cfg.Locale)

	var payload struct {
		Races []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"races"`
	}
	if err := c.get(ctx, endpoint, token, &payload); err != nil {
		return nil, err
	}

	races := make([]RaceRef, 0, len(payload.Races))
	for _, r := range payload.Races {
		races = append(races, RaceRef{ID: r.ID, Name: r.Name})
	}
	return races, nil
}

func (c *httpClient) FetchRealms(ctx context.Context, token string) ([]RealmRef, error) {
	endpoint := fmt.Sprintf("%s/data/wow/realm/index?namespace=dynamic-%s&locale=%s",
		c.base, c.cfg.Region, c.cfg.Locale)

	var payload struct {
		Realms []struct {
			Slug string `json:"slug"`
			Name string `json:"name"`
		} `json:"realms"`
	}
	if err := c.get(ctx, endpoint, token, &payload); err != nil {
		return nil, err
	}

	realms := make([]RealmRef, 0, len(payload.Realms))
	for _, r := range payload.Realms {
		realms = append(realms, RealmRef{Slug: r.Slug, Name: r.Name, Region: c.cfg.Region})
	}
	return realms, nil
}

// get performs an authenticated GET and decodes the JSON body into out.
// Auth failures map to ErrUnauthorized, everything else to ErrUnavailable.
func (c *httpClient) get(ctx context.Context, endpoint, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %s", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %s", ErrUnavailable, err)
	}

	return nil
}
