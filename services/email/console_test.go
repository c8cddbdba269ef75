package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/shakhna/portal/core"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	svc := NewConsoleServiceMock(&core.Config{AppName: "Test"})

	svc.SendMessages(
		&core.EmailMessage{
			To:      []mail.Address{{Name: "Awe", Address: "awe@test.cd"}},
			Subject: "Welcome aboard!",
			Body:    "Hi Awe,",
		},
		&core.EmailMessage{Subject: "no recipients", Body: "dropped"},
		&core.EmailMessage{To: []mail.Address{{Address: "awe@test.cd"}}}, // no content, dropped
	)

	sent := svc.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("len(sent) = %d; want 1 (empty messages are dropped)", len(sent))
	}
	if sent[0].Subject != "Welcome aboard!" {
		t.Errorf("Subject = %q", sent[0].Subject)
	}
}
