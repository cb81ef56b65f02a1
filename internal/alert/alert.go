// Package alert mails stock warnings to the school's supply manager.
package alert

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Host         string
	Port         int
	User         string
	Password     string
	From         string
	To           string
	AuthDisabled bool
}

// SendFunc has the signature of smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	cfg  Config
	send SendFunc
	now  func() time.Time
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

// WithSender replaces the SMTP transport.
func (m *Mailer) WithSender(send SendFunc) *Mailer {
	m.send = send
	return m
}

// Enabled is false when no SMTP host or recipient is configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.Host != "" && m.cfg.To != ""
}

// ItemChanged mails a warning when an item has just become low or out of
// stock. before is nil for a newly created item.
func (m *Mailer) ItemChanged(before *models.InventoryItem, after models.InventoryItem) bool {
	if !m.Enabled() || !after.NeedsRestock() {
		return false
	}
	if before != nil && before.Status() == after.Status() {
		return false
	}

	status := after.Status()
	subject := fmt.Sprintf("%s: %s", status.Label(), after.Name)
	body := fmt.Sprintf("Item: %s\nCategory: %s\nLocation: %s\nQuantity: %d %s\nMinimum stock: %d\nTime: %s",
		after.Name, after.Category, after.Location, after.Quantity, after.Unit, after.MinStock, m.now().Format(time.RFC3339))

	go func() {
		if err := m.deliver(subject, "text/plain", body); err != nil {
			log.Error().Err(err).Int("item_id", after.ID).Msg("failed to send stock alert")
			return
		}
		log.Info().Int("item_id", after.ID).Str("status", string(status)).Msg("stock alert sent")
	}()
	return true
}

// Digest is what the daily summary reports on.
type Digest struct {
	Items   []models.InventoryItem
	Pending []models.Request
}

// SendDigest mails an HTML summary of the items that need restocking and
// the requests still waiting for approval. Nothing is sent when there is
// neither.
func (m *Mailer) SendDigest(d Digest) error {
	if !m.Enabled() {
		return nil
	}

	var low, out []models.InventoryItem
	for _, it := range d.Items {
		switch it.Status() {
		case models.StockOut:
			out = append(out, it)
		case models.StockLow:
			low = append(low, it)
		}
	}
	if len(low)+len(out)+len(d.Pending) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("<h2>Daily Stock Summary</h2>")
	sb.WriteString(fmt.Sprintf("<p>Items needing restock: <strong>%d</strong></p>", len(low)+len(out)))
	sb.WriteString(fmt.Sprintf("<p>Requests awaiting approval: <strong>%d</strong></p>", len(d.Pending)))
	writeSection(&sb, "Out of Stock", out)
	writeSection(&sb, "Low Stock", low)

	return m.deliver("Daily Stock Summary", "text/html; charset=\"UTF-8\"", sb.String())
}

func writeSection(sb *strings.Builder, title string, items []models.InventoryItem) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("<h3>" + title + "</h3><ul>")
	for _, it := range items {
		sb.WriteString(fmt.Sprintf("<li><b>%s</b> (%s, %s): %d of minimum %d</li>",
			html.EscapeString(it.Name), html.EscapeString(it.Category), html.EscapeString(it.Location), it.Quantity, it.MinStock))
	}
	sb.WriteString("</ul>")
}

func (m *Mailer) deliver(subject, contentType, body string) error {
	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + m.cfg.To,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: " + contentType,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if !m.cfg.AuthDisabled {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	return m.send(addr, auth, m.cfg.From, []string{m.cfg.To}, []byte(msg))
}

// StartDailyDigest sends the digest every day at 23:59 until ctx is done.
func (m *Mailer) StartDailyDigest(ctx context.Context, load func(context.Context) (Digest, error)) {
	for {
		now := m.now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location())
		if now.After(next) {
			next = next.Add(24 * time.Hour)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		d, err := load(ctx)
		if err != nil {
			log.Error().Err(err).Msg("daily stock digest: could not load inventory")
			continue
		}
		if err := m.SendDigest(d); err != nil {
			log.Error().Err(err).Msg("failed to send daily stock digest")
		} else {
			log.Info().Msg("daily stock digest sent")
		}
	}
}
