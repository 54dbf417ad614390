package imap

import (
	"fmt"
	"log"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// Client represents an IMAP client wrapper
type Client struct {
	client   *client.Client
	username string
}

// NewClient connects and authenticates against an IMAP server
func NewClient(host string, port int, username, password string) (*Client, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", host, port), nil)
	if err != nil {
		return nil, fmt.Errorf("connection error: %v", err)
	}

	if err := c.Login(username, password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("login error: %v", err)
	}

	return &Client{client: c, username: username}, nil
}

// Close closes the IMAP connection
func (c *Client) Close() error {
	return c.client.Logout()
}

// MessageSummary is the header summary of a fetched message
type MessageSummary struct {
	Subject string
	From    string
}

// UnseenSince returns the number of unseen messages delivered since the
// given time, plus the header summary of the newest one. A zero since
// matches all unseen messages.
func (c *Client) UnseenSince(folder string, since time.Time) (int, *MessageSummary, error) {
	if _, err := c.client.Select(folder, true); err != nil {
		return 0, nil, fmt.Errorf("error selecting %s: %v", folder, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	if !since.IsZero() {
		criteria.Since = since
	}

	ids, err := c.client.Search(criteria)
	if err != nil {
		return 0, nil, fmt.Errorf("error searching %s: %v", folder, err)
	}
	if len(ids) == 0 {
		return 0, nil, nil
	}

	summary, err := c.fetchHeader(ids[len(ids)-1])
	if err != nil {
		// the count is still useful without the header
		log.Printf("[IMAP] Failed to fetch header for message %d: %v", ids[len(ids)-1], err)
		return len(ids), nil, nil
	}

	return len(ids), summary, nil
}

// fetchHeader fetches and parses the header section of a single message
func (c *Client) fetchHeader(seqNum uint32) (*MessageSummary, error) {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNum)

	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.HeaderSpecifier},
		Peek:         true,
	}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.client.Fetch(seqSet, items, messages)
	}()

	var msg *imap.Message
	for m := range messages {
		msg = m
	}
	if err := <-done; err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, fmt.Errorf("message %d not returned by fetch", seqNum)
	}

	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("message %d has no header section", seqNum)
	}

	mr, err := mail.CreateReader(body)
	if err != nil {
		return nil, fmt.Errorf("error parsing header: %v", err)
	}

	summary := &MessageSummary{}
	summary.Subject, _ = mr.Header.Subject()
	if addrs, err := mr.Header.AddressList("From"); err == nil && len(addrs) > 0 {
		if addrs[0].Name != "" {
			summary.From = addrs[0].Name
		} else {
			summary.From = addrs[0].Address
		}
	}

	return summary, nil
}

// DeleteOlderThan flags and expunges all messages in the folder delivered
// before the given time. Returns the number of deleted messages. A folder
// that does not exist on the server is treated as empty.
func (c *Client) DeleteOlderThan(folder string, before time.Time) (int, error) {
	if _, err := c.client.Select(folder, false); err != nil {
		return 0, nil
	}

	criteria := imap.NewSearchCriteria()
	criteria.Before = before

	ids, err := c.client.Search(criteria)
	if err != nil {
		return 0, fmt.Errorf("error searching %s: %v", folder, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(ids...)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.DeletedFlag}
	if err := c.client.Store(seqSet, item, flags, nil); err != nil {
		return 0, fmt.Errorf("error flagging messages in %s: %v", folder, err)
	}

	if err := c.client.Expunge(nil); err != nil {
		return 0, fmt.Errorf("error expunging %s: %v", folder, err)
	}

	return len(ids), nil
}
