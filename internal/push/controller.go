package push

import (
	"context"
	"fmt"
	"log"

	"mailpilot-backend/internal/account/domain"
	"mailpilot-backend/internal/account/repository"
	"mailpilot-backend/pkg/gmail"

	"golang.org/x/oauth2"
)

// Controller brings the persistent new-mail channel up or down for an
// account. The channel is a Gmail mailbox watch publishing to the
// configured Pub/Sub topic; accounts without OAuth credentials have no
// channel and both operations are no-ops. Start and Stop are idempotent:
// starting replaces any existing watch, stopping a mailbox without one is
// tolerated, so the orchestrator may re-issue either after a retry.
type Controller struct {
	gmailService *gmail.Service
	accountRepo  repository.AccountRepository
	topicName    string
}

// NewController creates a new push channel controller. topicName is the
// fully qualified Pub/Sub topic the mailbox watch publishes to.
func NewController(gmailService *gmail.Service, accountRepo repository.AccountRepository, topicName string) *Controller {
	return &Controller{
		gmailService: gmailService,
		accountRepo:  accountRepo,
		topicName:    topicName,
	}
}

// tokenRefreshFunc persists refreshed OAuth tokens back onto the account
func (c *Controller) tokenRefreshFunc(account *domain.Account) gmail.TokenUpdateFunc {
	return func(newToken *oauth2.Token) error {
		if err := c.accountRepo.UpdateField(account.ID, "access_token", newToken.AccessToken); err != nil {
			return err
		}
		if newToken.RefreshToken != "" {
			return c.accountRepo.UpdateField(account.ID, "refresh_token", newToken.RefreshToken)
		}
		return nil
	}
}

// Start begins push delivery for the account
func (c *Controller) Start(ctx context.Context, account *domain.Account) error {
	if account.AccessToken == "" {
		log.Printf("[Push] Account %s has no OAuth credentials, push channel unavailable", account.ID)
		return nil
	}

	if err := c.gmailService.Watch(ctx, account.AccessToken, account.RefreshToken, c.topicName, c.tokenRefreshFunc(account)); err != nil {
		return fmt.Errorf("push channel start for account %s: %w", account.ID, err)
	}

	log.Printf("[Push] Channel started for account %s (%s)", account.ID, account.Email)
	return nil
}

// Stop ends push delivery for the account
func (c *Controller) Stop(ctx context.Context, account *domain.Account) error {
	if account.AccessToken == "" {
		return nil
	}

	if err := c.gmailService.Stop(ctx, account.AccessToken, account.RefreshToken, c.tokenRefreshFunc(account)); err != nil {
		return fmt.Errorf("push channel stop for account %s: %w", account.ID, err)
	}

	log.Printf("[Push] Channel stopped for account %s (%s)", account.ID, account.Email)
	return nil
}
