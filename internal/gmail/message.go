package gmail

import (
	"encoding/base64"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	"mailsage/internal/content"
	"mailsage/internal/model"
)

// DateLayout renders message dates as "8 Dec 2025".
const DateLayout = "2 Jan 2006"

const previewWords = 10

// ErrMalformedMessage marks a hydrated message that cannot become an Email.
var ErrMalformedMessage = errors.New("malformed message")

// ToEmail converts a fully fetched Gmail message. A message without an id
// or a payload is rejected with ErrMalformedMessage.
func ToEmail(msg *gmail.Message) (model.Email, error) {
	if msg == nil {
		return model.Email{}, fmt.Errorf("%w: empty response", ErrMalformedMessage)
	}
	if msg.Id == "" {
		return model.Email{}, fmt.Errorf("%w: missing id", ErrMalformedMessage)
	}
	if msg.Payload == nil {
		return model.Email{}, fmt.Errorf("%w: %s has no payload", ErrMalformedMessage, msg.Id)
	}
	headers := msg.Payload.Headers
	body := ExtractBody(msg.Payload)
	return model.Email{
		ID:           msg.Id,
		Sender:       ParseSender(header(headers, "From")),
		Subject:      header(headers, "Subject"),
		Snippet:      msg.Snippet,
		Body:         body,
		Preview:      content.Snippet(body, previewWords),
		PreviewImage: content.PreviewImage(body),
		Date:         time.UnixMilli(msg.InternalDate).UTC().Format(DateLayout),
		Timestamp:    msg.InternalDate,
	}, nil
}

func header(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// ParseSender splits a From header. The display name is whatever precedes
// "<" with quotes removed; the address is what sits inside the brackets.
func ParseSender(from string) model.Sender {
	name, addr := from, ""
	if open := strings.Index(from, "<"); open >= 0 {
		if end := strings.Index(from[open:], ">"); end > 0 {
			addr = strings.TrimSpace(from[open+1 : open+end])
		}
		if open > 0 {
			name = from[:open]
		} else {
			name = addr
		}
	}
	name = strings.TrimSpace(strings.ReplaceAll(name, `"`, ""))
	if addr == "" && strings.Contains(name, "@") {
		addr = name
	}
	return model.Sender{Name: name, Email: addr, Color: SenderColor(addr, name)}
}

// SenderColor derives a stable #rrggbb tag from the address.
func SenderColor(addr, name string) string {
	key := strings.ToLower(addr)
	if key == "" {
		key = name
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return fmt.Sprintf("#%06x", h.Sum32()&0xffffff)
}

// ExtractBody prefers the part's own data, then an HTML child, then a plain
// text child, then the first nested part that yields anything.
func ExtractBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}
	if part.Body != nil && part.Body.Data != "" {
		if body, ok := decode(part.Body.Data); ok {
			return body
		}
	}
	for _, mime := range []string{"text/html", "text/plain"} {
		for _, child := range part.Parts {
			if child != nil && child.MimeType == mime && child.Body != nil && child.Body.Data != "" {
				if body, ok := decode(child.Body.Data); ok {
					return body
				}
			}
		}
	}
	for _, child := range part.Parts {
		if body := ExtractBody(child); body != "" {
			return body
		}
	}
	return ""
}

// decode accepts padded or unpadded base64, URL or standard alphabet.
func decode(data string) (string, bool) {
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding, base64.RawURLEncoding, base64.StdEncoding, base64.RawStdEncoding,
	} {
		if b, err := enc.DecodeString(data); err == nil {
			return string(b), true
		}
	}
	return "", false
}
