package whatsapp_test

import (
	"strings"
	"testing"
	"time"

	"github.com/rafaeldutra/agenda-api/internal/model"
	"github.com/rafaeldutra/agenda-api/internal/schedule"
	"github.com/rafaeldutra/agenda-api/internal/whatsapp"
)

func sampleBooking(t *testing.T) (*model.Booking, *model.Service) {
	t.Helper()
	day, err := time.Parse("2006-01-02", "2024-06-10")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	start, err := schedule.ParseClock("09:00")
	if err != nil {
		t.Fatalf("parse clock: %v", err)
	}
	b := &model.Booking{
		CustomerName:  "Maria Silva",
		CustomerPhone: "24998190280",
		Date:          day,
		StartTime:     start,
	}
	svc := &model.Service{Name: "Corte de Cabelo"}
	return b, svc
}

func TestMessageFromBooking(t *testing.T) {
	b, svc := sampleBooking(t)
	got := whatsapp.MessageFromBooking(b, svc)
	want := "Olá, meu nome é Maria Silva, gostaria de confirmar meu agendamento para Corte de Cabelo no dia 10/06/2024 às 09:00. Telefone: 24998190280"
	if got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestLinkFromBooking(t *testing.T) {
	b, svc := sampleBooking(t)
	link := whatsapp.LinkFromBooking("5524998190280", b, svc)
	if !strings.HasPrefix(link, "https://wa.me/5524998190280?text=") {
		t.Fatalf("unexpected link prefix: %q", link)
	}
	if strings.Contains(link, "+") {
		t.Errorf("link must not contain '+': %q", link)
	}
	if !strings.Contains(link, "%20") {
		t.Errorf("spaces must be encoded as %%20: %q", link)
	}
}

func TestLinkFromText(t *testing.T) {
	link := whatsapp.LinkFromText("5524998190280", "Olá! Tudo bem?")
	want := "https://wa.me/5524998190280?text=Ol%C3%A1%21%20Tudo%20bem%3F"
	if link != want {
		t.Errorf("link = %q, want %q", link, want)
	}
}
