package service

import (
	"context"
	"fmt"

	"go-writer-app/internal/content"
	"go-writer-app/internal/data"
	"go-writer-app/internal/logger"
	"go-writer-app/internal/mail"
)

// SubscriberLister is the subset of the subscriber store the dispatcher
// needs.
type SubscriberLister interface {
	GetAll(ctx context.Context) ([]*data.Subscriber, error)
}

// MailNotifier selects subscriber groups and sends one notice per
// recipient when a page is published with the notify flag set.
type MailNotifier struct {
	subs     SubscriberLister
	resolver *content.Resolver
	sender   mail.Sender
	baseURL  string
	siteName string
	log      logger.Logger
}

// NewMailNotifier creates a MailNotifier.
func NewMailNotifier(subs SubscriberLister, resolver *content.Resolver, sender mail.Sender, baseURL, siteName string, log logger.Logger) *MailNotifier {
	return &MailNotifier{
		subs:     subs,
		resolver: resolver,
		sender:   sender,
		baseURL:  baseURL,
		siteName: siteName,
		log:      log,
	}
}

// Notify sends one notice per matching subscriber: every subscriber for
// group "all", otherwise those whose subscription set contains the
// group token. Individual delivery failures are logged and skipped;
// the dispatcher keeps going.
func (n *MailNotifier) Notify(ctx context.Context, page *data.Page, group string) error {
	subscribers, err := n.subs.GetAll(ctx)
	if err != nil {
		return err
	}

	section, err := n.resolver.SectionName(ctx, page)
	if err != nil {
		return err
	}
	banner, err := n.resolver.EffectiveBanner(ctx, page)
	if err != nil {
		return err
	}
	description := content.Description(page)
	link := n.baseURL + page.Path

	subject := fmt.Sprintf("New Post: %s - %s", section, page.Title)
	body := fmt.Sprintf("%s\nNew Post: %s - %s\n%s\nRead more: %s",
		n.siteName, section, page.Title, description, link)
	html := n.buildHTML(page, banner, description, link)

	sent := 0
	for _, sub := range subscribers {
		if group != data.GroupAll && !sub.InGroup(group) {
			continue
		}
		msg := mail.Message{
			Subject:    subject,
			Recipients: []string{sub.Email},
			Body:       body,
			HTML:       html,
		}
		if err := n.sender.Send(msg); err != nil {
			n.log.Error(err, fmt.Sprintf("failed to send notice to %s", sub.Email))
			continue
		}
		sent++
	}
	n.log.With(map[string]interface{}{"page": page.Path, "group": group, "sent": sent}).
		Info("subscriber notices dispatched")
	return nil
}

func (n *MailNotifier) buildHTML(page *data.Page, banner, description, link string) string {
	bannerRow := ""
	if banner != "" {
		bannerRow = fmt.Sprintf(`<a href='%s'>
<table width="100%%" border="0" cellspacing="0" cellpadding="0">
<tr><td align="center" height="250" style="height:250px;overflow:hidden;background:url(%s) no-repeat center center;background-size:cover;">&nbsp;</td></tr>
</table>
</a>`, link, banner)
	}
	return fmt.Sprintf(`<h1>%s</h1>
%s
<h3>New Post: %s</h3>
<p>%s</p>
<p><a href='%s'>Read more...</a></p>`, n.siteName, bannerRow, page.Title, description, link)
}
