package gmail

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is called when the OAuth token source refreshed the
// account's tokens, so the caller can persist them.
type TokenUpdateFunc func(newToken *oauth2.Token) error

// Service wraps the Gmail mailbox-watch API
type Service struct {
	clientID     string
	clientSecret string
}

// NewService creates a new Gmail watch service
func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// notifyTokenSource wraps an oauth2.TokenSource and reports refreshed tokens
type notifyTokenSource struct {
	src      oauth2.TokenSource
	last     *oauth2.Token
	onUpdate TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.onUpdate != nil && (s.last == nil || token.AccessToken != s.last.AccessToken) {
		if err := s.onUpdate(token); err != nil {
			log.Printf("[Gmail] Failed to persist refreshed token: %v", err)
		}
	}
	s.last = token
	return token, nil
}

func (s *Service) gmailService(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*gmail.Service, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}

	ts := &notifyTokenSource{
		src:      oauthConfig.TokenSource(ctx, token),
		last:     token,
		onUpdate: onTokenRefresh,
	}

	return gmail.NewService(ctx, option.WithTokenSource(ts))
}

// Watch starts push notifications for the user's inbox on the given Pub/Sub
// topic. Any existing watch is stopped first; Gmail allows a single push
// client per mailbox, so Watch is effectively an idempotent replace.
func (s *Service) Watch(ctx context.Context, accessToken, refreshToken, topicName string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.gmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return err
	}

	_ = srv.Users.Stop("me").Do()

	req := &gmail.WatchRequest{
		TopicName: topicName,
		LabelIds:  []string{"INBOX"},
	}

	resp, err := srv.Users.Watch("me", req).Do()
	if err != nil {
		return fmt.Errorf("unable to watch mailbox: %v", err)
	}
	log.Printf("[Gmail] Watch started. Expiration: %d, HistoryId: %d", resp.Expiration, resp.HistoryId)

	return nil
}

// Stop stops push notifications for the user's mailbox. Stopping a mailbox
// with no active watch is not an error.
func (s *Service) Stop(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.gmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return err
	}

	if err := srv.Users.Stop("me").Do(); err != nil {
		return fmt.Errorf("unable to stop mailbox watch: %v", err)
	}

	return nil
}
