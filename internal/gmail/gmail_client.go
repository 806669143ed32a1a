package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"mailsage/internal/config"
	"mailsage/internal/logger"
	"mailsage/internal/model"
	"mailsage/internal/service"
)

const (
	me         = "me"
	inboxLabel = "INBOX"
)

// TokenUpdateFunc is called when the oauth2 library refreshed a user's token.
type TokenUpdateFunc func(user *model.User, token *oauth2.Token)

type gmailClient struct {
	oauth       *oauth2.Config
	maxResults  int64
	concurrency int
	onRefresh   TokenUpdateFunc
	endpoint    string
	logger      *logger.Logger
}

func NewGmailClient(cfg *config.Config, onRefresh TokenUpdateFunc, logger *logger.Logger) service.MailSource {
	return &gmailClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
		},
		maxResults:  cfg.MaxFetchEmails,
		concurrency: cfg.MailFetchConcurrency,
		onRefresh:   onRefresh,
		logger:      logger.With("gmail"),
	}
}

// serviceFor builds a Gmail service authorised as user.
func (g *gmailClient) serviceFor(ctx context.Context, user *model.User) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  user.AccessToken,
		RefreshToken: user.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       user.TokenExpiry,
	}
	src := &notifyTokenSource{
		src:     g.oauth.TokenSource(ctx, token),
		current: token.AccessToken,
		user:    user,
		notify:  g.onRefresh,
	}

	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, src))}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}
	srv, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return srv, nil
}

// FetchInbox lists the newest INBOX messages and hydrates them in parallel.
// Messages that fail to load are dropped.
func (g *gmailClient) FetchInbox(ctx context.Context, user *model.User) ([]model.Email, error) {
	srv, err := g.serviceFor(ctx, user)
	if err != nil {
		return nil, err
	}

	list, err := srv.Users.Messages.List(me).LabelIds(inboxLabel).MaxResults(g.maxResults).Context(ctx).Do()
	if err != nil {
		return nil, classify("failed to list messages", err)
	}

	hydrated := make([]*model.Email, len(list.Messages))
	var (
		eg      errgroup.Group
		mu      sync.Mutex
		dropped int
	)
	eg.SetLimit(g.concurrency)
	for i, ref := range list.Messages {
		i, id := i, ref.Id
		eg.Go(func() error {
			email, err := g.hydrate(ctx, srv, id)
			if err != nil {
				g.logger.Warnf("%v", err)
				mu.Lock()
				dropped++
				mu.Unlock()
				return nil
			}
			hydrated[i] = &email
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrUpstreamUnavailable, err)
	}

	emails := make([]model.Email, 0, len(hydrated))
	for _, e := range hydrated {
		if e != nil {
			emails = append(emails, *e)
		}
	}
	sort.SliceStable(emails, func(i, j int) bool { return emails[i].Timestamp > emails[j].Timestamp })

	g.logger.Info("Fetched", len(emails), "inbox emails,", dropped, "dropped")
	return emails, nil
}

// hydrate loads and converts one message. Any failure, including a panic
// while walking the payload, is reported as ErrPartialFetch.
func (g *gmailClient) hydrate(ctx context.Context, srv *gmail.Service, id string) (email model.Email, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", service.ErrPartialFetch, id, r)
		}
	}()

	msg, err := srv.Users.Messages.Get(me, id).Format("full").Context(ctx).Do()
	if err != nil {
		return model.Email{}, fmt.Errorf("%w: %s: %v", service.ErrPartialFetch, id, err)
	}
	if email, err = ToEmail(msg); err != nil {
		return model.Email{}, fmt.Errorf("%w: %s: %v", service.ErrPartialFetch, id, err)
	}
	return email, nil
}

// ArchiveEmail removes the INBOX label.
func (g *gmailClient) ArchiveEmail(ctx context.Context, user *model.User, messageID string) error {
	srv, err := g.serviceFor(ctx, user)
	if err != nil {
		return err
	}
	req := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{inboxLabel}}
	if _, err := srv.Users.Messages.Modify(me, messageID, req).Context(ctx).Do(); err != nil {
		return classify("failed to archive email", err)
	}
	g.logger.Info("Archived email:", messageID)
	return nil
}

// TrashEmail moves the message to the trash; it is not deleted permanently.
func (g *gmailClient) TrashEmail(ctx context.Context, user *model.User, messageID string) error {
	srv, err := g.serviceFor(ctx, user)
	if err != nil {
		return err
	}
	if _, err := srv.Users.Messages.Trash(me, messageID).Context(ctx).Do(); err != nil {
		return classify("failed to trash email", err)
	}
	g.logger.Info("Trashed email:", messageID)
	return nil
}

// classify maps auth failures to ErrAuthentication and everything else to
// ErrUpstreamUnavailable.
func classify(msg string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden) {
		return fmt.Errorf("%s: %w", msg, service.ErrAuthentication)
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%s: %w", msg, service.ErrAuthentication)
	}
	return fmt.Errorf("%s: %w: %v", msg, service.ErrUpstreamUnavailable, err)
}

// notifyTokenSource reports refreshed tokens so they can be persisted.
type notifyTokenSource struct {
	src     oauth2.TokenSource
	mu      sync.Mutex
	current string
	user    *model.User
	notify  TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.current {
		s.current = token.AccessToken
		if s.notify != nil {
			s.notify(s.user, token)
		}
	}
	return token, nil
}
