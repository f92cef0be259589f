package notify

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

// Notification is one record delivered to the real-time channel after a
// document mutation commits.
type Notification struct {
	ModuleCode string `json:"module_code"`
	HeaderID   int64  `json:"header_id"`
	DocNo      string `json:"doc_no"`
	Event      string `json:"event"`
	Message    string `json:"message"`
}

// Notifier delivers a batch of notifications. Delivery is best-effort and
// must never run inside the transaction that produced the batch.
type Notifier interface {
	Publish(batch []Notification)
}

// MailNotifier sends each batch as one mail message.
type MailNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewMailNotifier(host string, port int, user, password, from, to string) *MailNotifier {
	return &MailNotifier{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
		to:     to,
	}
}

func (n *MailNotifier) Publish(batch []Notification) {
	if len(batch) == 0 || n.to == "" {
		return
	}

	go func() {
		body := ""
		for _, item := range batch {
			body += fmt.Sprintf("[%s] %s %s: %s\r\n", item.ModuleCode, item.DocNo, item.Event, item.Message)
		}

		m := gomail.NewMessage()
		m.SetHeader("From", n.from)
		m.SetHeader("To", n.to)
		m.SetHeader("Subject", fmt.Sprintf("Warehouse notification (%d)", len(batch)))
		m.SetBody("text/plain", body)

		if err := n.dialer.DialAndSend(m); err != nil {
			log.Printf("notify: failed to send mail: %v", err)
		}
	}()
}

// NoopNotifier drops every batch. Used when no mail transport is configured.
type NoopNotifier struct{}

func (NoopNotifier) Publish(batch []Notification) {}
