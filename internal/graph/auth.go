package graph

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Cloud describes one national cloud deployment of the service.
type Cloud struct {
	Name     string
	GraphURL string
	LoginURL string
}

var clouds = []Cloud{
	{Name: "Global", GraphURL: "https://graph.microsoft.com", LoginURL: "https://login.microsoftonline.com"},
	{Name: "USGov", GraphURL: "https://graph.microsoft.us", LoginURL: "https://login.microsoftonline.us"},
	{Name: "USGovDoD", GraphURL: "https://dod-graph.microsoft.us", LoginURL: "https://login.microsoftonline.us"},
	{Name: "China", GraphURL: "https://microsoftgraph.chinacloudapi.cn", LoginURL: "https://login.chinacloudapi.cn"},
}

// LookupCloud resolves an environment name, case-insensitively.
func LookupCloud(name string) (Cloud, bool) {
	for _, c := range clouds {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Cloud{}, false
}

// CloudNames lists the supported environment names.
func CloudNames() []string {
	names := make([]string, 0, len(clouds))
	for _, c := range clouds {
		names = append(names, c.Name)
	}
	return names
}

// Credentials selects how requests are authorised.
type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Token        string
}

// NewAuthorizedHTTPClient returns an http.Client that attaches bearer tokens for cloud.
// A static Token takes precedence over client credentials.
func NewAuthorizedHTTPClient(ctx context.Context, cloud Cloud, creds Credentials, timeout time.Duration) (*http.Client, error) {
	var client *http.Client
	switch {
	case creds.Token != "":
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.Token, TokenType: "Bearer"}))
	case creds.ClientID != "" && creds.ClientSecret != "":
		if creds.TenantID == "" {
			return nil, fmt.Errorf("tenant id is required for client credentials")
		}
		cfg := clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", cloud.LoginURL, creds.TenantID),
			Scopes:       []string{cloud.GraphURL + "/.default"},
		}
		client = cfg.Client(ctx)
	default:
		return nil, fmt.Errorf("no credentials configured: set a token or a client id and secret")
	}

	if timeout > 0 {
		client.Timeout = timeout
	}
	return client, nil
}
