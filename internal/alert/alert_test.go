package alert

import (
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/models"
)

type outbox struct {
	mu   sync.Mutex
	sent []string
	addr string
	auth smtp.Auth
	done chan struct{}
}

func newOutbox() *outbox {
	return &outbox{done: make(chan struct{}, 10)}
}

func (o *outbox) send(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	o.mu.Lock()
	o.sent = append(o.sent, string(msg))
	o.addr, o.auth = addr, a
	o.mu.Unlock()
	o.done <- struct{}{}
	return nil
}

func (o *outbox) wait(t *testing.T) {
	t.Helper()
	select {
	case <-o.done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for mail")
	}
}

var testConfig = Config{Host: "smtp.school.test", Port: 587, From: "inventory@school.test", To: "office@school.test", AuthDisabled: true}

func TestItemChanged(t *testing.T) {
	box := newOutbox()
	m := NewMailer(testConfig).WithSender(box.send)

	before := models.InventoryItem{ID: 1, Name: "Pencils", Quantity: 20, MinStock: 10}
	after := before
	after.Quantity = 4

	if !m.ItemChanged(&before, after) {
		t.Fatal("expected an alert when an item drops to low stock")
	}
	box.wait(t)
	if box.addr != "smtp.school.test:587" || box.auth != nil {
		t.Errorf("unexpected transport %s %v", box.addr, box.auth)
	}
	if !strings.Contains(box.sent[0], "Subject: Low Stock: Pencils") {
		t.Errorf("unexpected message %q", box.sent[0])
	}

	still := after
	still.Quantity = 3
	if m.ItemChanged(&after, still) {
		t.Error("no alert expected while the status stays low")
	}

	healthy := before
	if m.ItemChanged(&after, healthy) {
		t.Error("no alert expected when stock recovers")
	}
}

func TestDisabledMailer(t *testing.T) {
	m := NewMailer(Config{})
	if m.Enabled() {
		t.Fatal("mailer without host should be disabled")
	}
	if m.ItemChanged(nil, models.InventoryItem{Quantity: 0, MinStock: 5}) {
		t.Error("disabled mailer must not send")
	}
	if err := m.SendDigest(Digest{Items: []models.InventoryItem{{Quantity: 0}}}); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestSendDigest(t *testing.T) {
	box := newOutbox()
	m := NewMailer(testConfig).WithSender(box.send)

	err := m.SendDigest(Digest{
		Items: []models.InventoryItem{
			{Name: "Pencils", Quantity: 5, MinStock: 10},
			{Name: "Erasers", Quantity: 0, MinStock: 5},
			{Name: "Paper", Quantity: 50, MinStock: 10},
		},
		Pending: []models.Request{{ID: 1}, {ID: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := box.sent[0]
	for _, want := range []string{"Items needing restock: <strong>2</strong>", "<h3>Out of Stock</h3>", "<b>Pencils</b>", "Requests awaiting approval: <strong>2</strong>"} {
		if !strings.Contains(msg, want) {
			t.Errorf("digest missing %q", want)
		}
	}
	if strings.Contains(msg, "<b>Paper</b>") {
		t.Error("healthy items should not be listed")
	}
}

func TestSendDigest_EscapesItemFields(t *testing.T) {
	box := newOutbox()
	m := NewMailer(testConfig).WithSender(box.send)

	err := m.SendDigest(Digest{Items: []models.InventoryItem{
		{Name: "<script>alert(1)</script>", Category: "Art & Craft", Location: "Room <B>", Quantity: 0, MinStock: 5},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := box.sent[0]
	if strings.Contains(msg, "<script>") || strings.Contains(msg, "Room <B>") {
		t.Errorf("item fields must be escaped: %q", msg)
	}
	for _, want := range []string{"&lt;script&gt;alert(1)&lt;/script&gt;", "Art &amp; Craft", "Room &lt;B&gt;"} {
		if !strings.Contains(msg, want) {
			t.Errorf("digest missing %q", want)
		}
	}
}

func TestSendDigest_PendingOnly(t *testing.T) {
	box := newOutbox()
	m := NewMailer(testConfig).WithSender(box.send)

	if err := m.SendDigest(Digest{Pending: []models.Request{{ID: 7}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(box.sent) != 1 || !strings.Contains(box.sent[0], "Items needing restock: <strong>0</strong>") {
		t.Errorf("expected a digest for pending requests, got %v", box.sent)
	}

	if err := m.SendDigest(Digest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(box.sent) != 1 {
		t.Error("nothing should be sent for an empty digest")
	}
}
