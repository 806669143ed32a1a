package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"

	"mailsage/internal/logger"
	"mailsage/internal/model"
	"mailsage/internal/service"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestParseSender(t *testing.T) {
	cases := map[string]model.Sender{
		`"Ana Lima" <ana@example.com>`: {Name: "Ana Lima", Email: "ana@example.com"},
		`GitHub <noreply@github.com>`:  {Name: "GitHub", Email: "noreply@github.com"},
		`bob@example.com`:              {Name: "bob@example.com", Email: "bob@example.com"},
		`<solo@example.com>`:           {Name: "solo@example.com", Email: "solo@example.com"},
		`Support Team`:                 {Name: "Support Team"},
	}
	for from, want := range cases {
		got := ParseSender(from)
		assert.Equal(t, want.Name, got.Name, from)
		assert.Equal(t, want.Email, got.Email, from)
		assert.Regexp(t, `^#[0-9a-f]{6}$`, got.Color, from)
	}
}

func TestSenderColorIsStable(t *testing.T) {
	assert.Equal(t, SenderColor("ana@example.com", ""), SenderColor("ANA@example.com", "other"))
	assert.NotEqual(t, SenderColor("ana@example.com", ""), SenderColor("bob@example.com", ""))
}

func TestExtractBodyPrecedence(t *testing.T) {
	direct := &gmail.MessagePart{Body: &gmail.MessagePartBody{Data: b64("direct")}}
	assert.Equal(t, "direct", ExtractBody(direct))

	multipart := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Body:     &gmail.MessagePartBody{},
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("plain")}},
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>html</p>")}},
		},
	}
	assert.Equal(t, "<p>html</p>", ExtractBody(multipart))

	nested := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "application/pdf", Body: &gmail.MessagePartBody{AttachmentId: "a1"}},
			{MimeType: "multipart/alternative", Parts: []*gmail.MessagePart{
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("deep")}},
			}},
		},
	}
	assert.Equal(t, "deep", ExtractBody(nested))
	assert.Equal(t, "", ExtractBody(nil))
}

func TestDecodeAcceptsUnpaddedData(t *testing.T) {
	raw := base64.RawURLEncoding.EncodeToString([]byte("héllo?>"))
	got, ok := decode(raw)
	require.True(t, ok)
	assert.Equal(t, "héllo?>", got)
}

func TestToEmail(t *testing.T) {
	msg := &gmail.Message{
		Id:           "m1",
		Snippet:      "Quick note",
		InternalDate: 1765152000000, // 8 Dec 2025 00:00 UTC
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "Ana <ana@example.com>"},
				{Name: "subject", Value: "Hello"},
			},
			Body: &gmail.MessagePartBody{Data: b64("body")},
		},
	}
	email, err := ToEmail(msg)
	require.NoError(t, err)
	assert.Equal(t, "m1", email.ID)
	assert.Equal(t, "Hello", email.Subject)
	assert.Equal(t, "8 Dec 2025", email.Date)
	assert.Equal(t, int64(1765152000000), email.Timestamp)
	assert.Equal(t, "body", email.Body)
	assert.False(t, email.IsPinned)
	assert.False(t, email.HasSummary)
}

func TestToEmailRejectsIncompleteMessages(t *testing.T) {
	_, err := ToEmail(nil)
	assert.ErrorIs(t, err, ErrMalformedMessage)

	_, err = ToEmail(&gmail.Message{Id: "m1", InternalDate: 5})
	assert.ErrorIs(t, err, ErrMalformedMessage)

	_, err = ToEmail(&gmail.Message{Payload: &gmail.MessagePart{}})
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestExtractBodySkipsNilParts(t *testing.T) {
	part := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			nil,
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("plain")}},
		},
	}
	assert.Equal(t, "plain", ExtractBody(part))
	assert.Equal(t, "", ExtractBody(&gmail.MessagePart{Parts: []*gmail.MessagePart{nil}}))
}

func fakeGmail(t *testing.T) *httptest.Server {
	t.Helper()
	messages := map[string]*gmail.Message{
		"old": {Id: "old", InternalDate: 1000, Payload: &gmail.MessagePart{Headers: []*gmail.MessagePartHeader{{Name: "Subject", Value: "old"}}}},
		"new": {Id: "new", InternalDate: 3000, Payload: &gmail.MessagePart{Headers: []*gmail.MessagePartHeader{{Name: "Subject", Value: "new"}}}},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		path := strings.TrimPrefix(r.URL.Path, "/gmail/v1/users/me/messages")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case path == "":
			assert.Equal(t, "INBOX", r.URL.Query().Get("labelIds"))
			assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
			io.WriteString(w, `{"messages":[{"id":"old"},{"id":"broken"},{"id":"nullpart"},{"id":"bare"},{"id":"anonymous"},{"id":"new"}]}`)
		case path == "/nullpart":
			io.WriteString(w, `{"id":"nullpart","internalDate":"2000","payload":{"mimeType":"multipart/mixed","parts":[null]}}`)
		case path == "/bare":
			io.WriteString(w, `{"id":"bare","internalDate":"5"}`)
		case path == "/anonymous":
			io.WriteString(w, `{"internalDate":"6","payload":{"mimeType":"text/plain"}}`)
		case path == "/broken":
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"code":404,"message":"gone"}}`)
		case strings.HasSuffix(path, "/trash"):
			io.WriteString(w, `{"id":"old"}`)
		case strings.HasSuffix(path, "/modify"):
			var req gmail.ModifyMessageRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []string{"INBOX"}, req.RemoveLabelIds)
			io.WriteString(w, `{"id":"old"}`)
		default:
			msg, ok := messages[strings.TrimPrefix(path, "/")]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(msg)
		}
	}))
}

func testClient(srv *httptest.Server) *gmailClient {
	return &gmailClient{
		oauth:       &oauth2.Config{},
		maxResults:  10,
		concurrency: 2,
		endpoint:    srv.URL + "/",
		logger:      logger.NewWithWriter(io.Discard),
	}
}

func TestFetchInboxDropsBrokenMessages(t *testing.T) {
	srv := fakeGmail(t)
	defer srv.Close()

	user := &model.User{AccessToken: "tok"}
	emails, err := testClient(srv).FetchInbox(context.Background(), user)
	require.NoError(t, err)

	require.Len(t, emails, 3)
	assert.Equal(t, "new", emails[0].ID)
	assert.Equal(t, "nullpart", emails[1].ID)
	assert.Equal(t, "", emails[1].Body)
	assert.Equal(t, "old", emails[2].ID)
}

func TestArchiveAndTrash(t *testing.T) {
	srv := fakeGmail(t)
	defer srv.Close()

	client := testClient(srv)
	user := &model.User{AccessToken: "tok"}
	assert.NoError(t, client.ArchiveEmail(context.Background(), user, "old"))
	assert.NoError(t, client.TrashEmail(context.Background(), user, "old"))
}

func TestFetchInboxUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"code":401,"message":"invalid credentials"}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv).FetchInbox(context.Background(), &model.User{AccessToken: "tok"})
	assert.ErrorIs(t, err, service.ErrAuthentication)
}

func TestFetchInboxServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := testClient(srv).FetchInbox(context.Background(), &model.User{AccessToken: "tok"})
	assert.ErrorIs(t, err, service.ErrUpstreamUnavailable)
}

func TestNotifyTokenSourceReportsRotation(t *testing.T) {
	var got []string
	src := &notifyTokenSource{
		src:     oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "fresh"}),
		current: "stale",
		user:    &model.User{ID: "u1"},
		notify:  func(u *model.User, tok *oauth2.Token) { got = append(got, u.ID+":"+tok.AccessToken) },
	}
	for i := 0; i < 2; i++ {
		_, err := src.Token()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"u1:fresh"}, got)
}
