package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	accountrepo "mailpilot-backend/internal/account/repository"
	authrepo "mailpilot-backend/internal/auth/repository"
	"mailpilot-backend/pkg/fcm"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// MailboxNotification is the payload the mailbox watch publishes when new
// mail arrives for a watched account.
type MailboxNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

// Service consumes mailbox-change events from Pub/Sub and fans them out to
// the owning user's devices via FCM. This is the delivery side of the push
// channel: the watch (see internal/push) only exists for accounts whose
// sync mode is push.
type Service struct {
	pubsubClient *pubsub.Client
	accountRepo  accountrepo.AccountRepository
	fcmRepo      authrepo.FCMTokenRepository
	fcmClient    *fcm.Client
	topicName    string
	subName      string

	// Deduplication: last historyId seen per account. Gmail redelivers
	// notifications liberally; processing the same historyId twice would
	// just spam the user's devices.
	mu            sync.Mutex
	lastHistoryID map[string]uint64
}

// NewService creates the Pub/Sub notification service
func NewService(projectID, topicName, credentialsFile string, accountRepo accountrepo.AccountRepository, fcmRepo authrepo.FCMTokenRepository, fcmClient *fcm.Client) (*Service, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &Service{
		pubsubClient:  client,
		accountRepo:   accountRepo,
		fcmRepo:       fcmRepo,
		fcmClient:     fcmClient,
		topicName:     topicName,
		subName:       topicName + "-sub", // Convention: topic-sub
		lastHistoryID: make(map[string]uint64),
	}, nil
}

// Start subscribes and blocks receiving messages until ctx is cancelled
func (s *Service) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting notification service with topic: %s, subscription: %s", s.topicName, s.subName)

	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", s.topicName)
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

// isDuplicate records the historyId and reports whether it was already seen
func (s *Service) isDuplicate(accountID string, historyID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastHistoryID[accountID]; ok && historyID <= last {
		return true
	}
	s.lastHistoryID[accountID] = historyID
	return false
}

func (s *Service) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var notification MailboxNotification
	if err := json.Unmarshal(msg.Data, &notification); err != nil {
		log.Printf("[PubSub] Failed to unmarshal notification: %v", err)
		return
	}

	account, err := s.accountRepo.FindByEmail(notification.EmailAddress)
	if err != nil {
		log.Printf("[PubSub] Error finding account for %s: %v", notification.EmailAddress, err)
		return
	}
	if account == nil {
		log.Printf("[PubSub] No account registered for %s", notification.EmailAddress)
		return
	}

	if s.isDuplicate(account.ID, notification.HistoryID) {
		return
	}

	// A push event means the mailbox changed; record the sync touch
	if err := s.accountRepo.UpdateSyncState(account.ID, time.Now(), ""); err != nil {
		log.Printf("[PubSub] Failed to update sync state for account %s: %v", account.ID, err)
	}

	if s.fcmClient == nil {
		return
	}

	tokens, err := s.fcmRepo.GetTokensByUserID(account.UserID)
	if err != nil {
		log.Printf("[FCM] Error getting tokens for user %s: %v", account.UserID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	var tokenStrings []string
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	failedTokens, err := s.fcmClient.SendToDevices(ctx, tokenStrings, fcm.NotificationData{
		Title: "New mail",
		Body:  fmt.Sprintf("New mail in %s", account.Email),
		Data: map[string]string{
			"type":       "mailbox_update",
			"account_id": account.ID,
			"email":      account.Email,
			"historyId":  fmt.Sprintf("%d", notification.HistoryID),
		},
	})
	if err != nil {
		log.Printf("[FCM] Error sending notifications: %v", err)
		return
	}

	// Cleanup failed tokens
	for _, token := range failedTokens {
		if err := s.fcmRepo.DeleteToken(token); err != nil {
			log.Printf("[FCM] Failed to delete dead token: %v", err)
		}
	}
}
