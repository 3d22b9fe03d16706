// Package whatsapp builds wa.me links so a customer can confirm a
// booking with the professional in one tap.  Message text is product
// copy in Portuguese; everything around it stays locale-neutral.
package whatsapp

import (
    "fmt"
    "net/url"
    "strings"

    "github.com/rafaeldutra/agenda-api/internal/model"
)

// MessageFromBooking formats the confirmation text for a booking.  The
// service must be the one the booking references; it is passed in so
// this stays a pure function.
func MessageFromBooking(b *model.Booking, svc *model.Service) string {
    return fmt.Sprintf(
        "Olá, meu nome é %s, gostaria de confirmar meu agendamento para %s no dia %s às %s. Telefone: %s",
        b.CustomerName, svc.Name, b.Date.Format("02/01/2006"), b.StartTime.String(), b.CustomerPhone,
    )
}

// LinkFromBooking returns the wa.me URL for a booking's confirmation
// message, addressed to the professional's number.
func LinkFromBooking(number string, b *model.Booking, svc *model.Service) string {
    return Link(number, MessageFromBooking(b, svc))
}

// LinkFromText returns the wa.me URL for a free-form message, addressed
// to the professional's number.  Staff use this for ad-hoc follow-ups.
func LinkFromText(number, text string) string {
    return Link(number, text)
}

// Link assembles the wa.me URL.  Spaces are encoded as %20 rather than
// '+': some WhatsApp clients render a literal '+' in the prefilled text.
func Link(number, message string) string {
    encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
    return "https://wa.me/" + number + "?text=" + encoded
}
