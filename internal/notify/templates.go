package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"socialcore/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Excerpt lengths, in characters.
const (
	excerptLength = 200
	quotedLength  = 100
)

// EmailData is what the email templates can reference.
type EmailData struct {
	RecipientName string
	ActorName     string
	PostTitle     string
	Excerpt       string
	Quoted        string
	URL           string
}

// Renderer turns a notification into an email subject and HTML body.
type Renderer struct {
	templates map[string]*template.Template
	baseURL   string
}

// NewRenderer parses the embedded templates. baseURL is the frontend origin
// used for links back to the site.
func NewRenderer(baseURL string) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}

	for _, t := range []string{
		model.NotificationTypeComment,
		model.NotificationTypeReply,
		model.NotificationTypeLike,
		model.NotificationTypeFollow,
	} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+t+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", t, err)
		}
		r.templates[t] = tmpl
	}

	return r, nil
}

// Render builds the email for notice n. Names come from the loaded users.
func (r *Renderer) Render(n Notice, recipient, actor *model.User) (subject, body string, err error) {
	tmpl, ok := r.templates[n.Type]
	if !ok {
		return "", "", fmt.Errorf("no email template for notification type %q", n.Type)
	}

	data := EmailData{
		RecipientName: recipient.Name,
		ActorName:     actor.Name,
		PostTitle:     n.PostTitle,
		Excerpt:       truncate(n.Excerpt, excerptLength),
		Quoted:        truncate(n.Quoted, quotedLength),
		URL:           r.link(n),
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", "", fmt.Errorf("render %s email: %w", n.Type, err)
	}

	return r.subject(n, actor.Name), buf.String(), nil
}

func (r *Renderer) subject(n Notice, actorName string) string {
	switch n.Type {
	case model.NotificationTypeComment:
		return "New Comment on Your Post: " + n.PostTitle
	case model.NotificationTypeReply:
		return "Someone Replied to Your Comment"
	case model.NotificationTypeLike:
		if n.Quoted != "" {
			return actorName + " liked your comment"
		}
		return actorName + " liked your post"
	case model.NotificationTypeFollow:
		return actorName + " started following you"
	default:
		return "You have a new notification"
	}
}

func (r *Renderer) link(n Notice) string {
	if r.baseURL == "" {
		return ""
	}
	if n.Type == model.NotificationTypeFollow {
		return r.baseURL + "/users/" + n.ActorID
	}
	if n.PostID != nil {
		return r.baseURL + "/posts/" + *n.PostID
	}
	return r.baseURL
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
