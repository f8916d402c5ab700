package services

import (
	"fmt"
	"log"
	"strings"

	"procurement_tracker/internal/models"
	"procurement_tracker/pkg/whatsapp"
)

// NotificationService is the one-way messaging collaborator. It takes
// a destination channel and pre-formatted text; responses are never
// parsed beyond success or failure.
type NotificationService interface {
	SendMessage(channel, message string) error
	SendOrderSheet(channel string, order models.Order) error
	NotifySyncResult(ok bool, detail string)
}

type notificationService struct {
	client *whatsapp.Client
	// reportChannel receives operational notices such as sync results;
	// empty means log-only.
	reportChannel string
}

func NewNotificationService(client *whatsapp.Client, reportChannel string) NotificationService {
	return &notificationService{client: client, reportChannel: reportChannel}
}

func (s *notificationService) SendMessage(channel, message string) error {
	return s.client.SendTextMessage(channel, message)
}

func (s *notificationService) SendOrderSheet(channel string, order models.Order) error {
	return s.client.SendTextMessage(channel, FormatOrderSheet(order))
}

func (s *notificationService) NotifySyncResult(ok bool, detail string) {
	if ok {
		log.Printf("Sync: %s", detail)
	} else {
		log.Printf("Sync warning: %s", detail)
	}
	if s.reportChannel == "" {
		return
	}
	if err := s.client.SendTextMessage(s.reportChannel, "Sync: "+detail); err != nil {
		log.Printf("Warning: failed to deliver sync notice: %v", err)
	}
}

// FormatOrderSheet renders the outbound order message: header with the
// human-readable id, one line per item, spoiled lines annotated.
func FormatOrderSheet(order models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s / %s\n", order.OrderID, order.SupplierName)
	for _, line := range order.Items {
		fmt.Fprintf(&b, "- %s x%g", line.Name, line.Quantity)
		if line.Unit != "" {
			fmt.Fprintf(&b, " %s", line.Unit)
		}
		if line.IsSpoiled {
			b.WriteString(" (spoiled)")
		}
		b.WriteString("\n")
	}
	if order.PaymentMethod != "" {
		fmt.Fprintf(&b, "Payment: %s\n", order.PaymentMethod)
	}
	return b.String()
}
