package notify

import (
	"context"
	"time"

	"github.com/oksasatya/vidtube-accounts/internal/domain/entity"
	"github.com/oksasatya/vidtube-accounts/pkg/mailer"
	tpl "github.com/oksasatya/vidtube-accounts/pkg/mailer/templates"
)

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	Publish(ctx context.Context, msgType string, body any) error
}

// EmailNotifier turns account events into email jobs on the queue.
type EmailNotifier struct {
	Pub        Publisher
	AppName    string
	SupportURL string
}

func NewEmailNotifier(pub Publisher, appName, supportURL string) *EmailNotifier {
	return &EmailNotifier{Pub: pub, AppName: appName, SupportURL: supportURL}
}

func (n *EmailNotifier) UserRegistered(ctx context.Context, u *entity.User) error {
	return n.publish(ctx, u, tpl.Welcome)
}

func (n *EmailNotifier) PasswordChanged(ctx context.Context, u *entity.User) error {
	return n.publish(ctx, u, tpl.PasswordChanged)
}

func (n *EmailNotifier) publish(ctx context.Context, u *entity.User, template string) error {
	data := tpl.EmailData{
		Name:       u.FullName,
		UserName:   u.UserName,
		Email:      u.Email,
		AppName:    n.AppName,
		SupportURL: n.SupportURL,
		Time:       tpl.Stamp(time.Now()),
	}
	return n.Pub.Publish(ctx, template, mailer.EmailJob{To: u.Email, Template: template, Data: data.ToMap()})
}
