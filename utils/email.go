package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"

	"storefront-backend/models"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if config.Host == "" || config.Port == "" || config.From == "" {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return smtp.SendMail(addr, auth, config.From, []string{to}, msg)
}

func SendWelcomeEmail(email, name string) {
	go func() {
		firstName := name
		if firstName == "" {
			firstName = "there"
		} else {
			firstName = strings.Split(firstName, " ")[0]
		}
		subject := "Welcome to Storefront!"
		body := fmt.Sprintf(`<h2>Welcome, %s!</h2>
<p>Thank you for creating your account. You can now:</p>
<ul>
<li>Browse the full catalog and curated collections</li>
<li>Keep a wishlist of products you love</li>
<li>Track your orders from checkout to delivery</li>
</ul>
<p>Happy shopping!</p>
<p>The Storefront Team</p>`, firstName)
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", email, err)
		}
	}()
}

// SendOrderReceipt dispatches the paid-order receipt. It is fire-and-forget:
// the payment transaction has already committed and a mail failure must not
// affect it.
func SendOrderReceipt(email string, order models.Order) {
	go func() {
		subject := fmt.Sprintf("Your receipt for order %s", order.OrderNumber)

		var rows strings.Builder
		for _, item := range order.Items {
			rows.WriteString(fmt.Sprintf(
				"<tr><td>%s</td><td>%d</td><td>$%s</td></tr>\n",
				item.Name, item.Qty, item.Price.StringFixed(2)))
		}

		body := fmt.Sprintf(`<h2>Thanks for your order!</h2>
<p>Order <strong>%s</strong> has been paid.</p>
<table border="0" cellpadding="6">
<tr><th align="left">Item</th><th align="left">Qty</th><th align="left">Price</th></tr>
%s</table>
<p>Items: $%s<br>Shipping: $%s<br>Tax: $%s<br><strong>Total: $%s</strong></p>
<p>Shipping to: %s, %s, %s %s, %s</p>
<p>The Storefront Team</p>`,
			order.OrderNumber,
			rows.String(),
			order.ItemsPrice.StringFixed(2),
			order.ShippingPrice.StringFixed(2),
			order.TaxPrice.StringFixed(2),
			order.TotalPrice.StringFixed(2),
			order.FullName, order.StreetAddress, order.City, order.PostalCode, order.Country)

		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send order receipt to %s: %v", email, err)
		}
	}()
}
