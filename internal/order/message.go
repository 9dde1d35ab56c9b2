package order

import (
	"fmt"
	"net/url"
	"strings"

	"pizzeria-be/internal/pricing"
	"pizzeria-be/internal/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

var paymentLabels = map[PaymentMethod]string{
	PaymentPix:  "Pix",
	PaymentCard: "Cartão na entrega",
	PaymentCash: "Dinheiro",
}

// FormatBRL renders an amount as "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	return brl.Sprintf("R$ %v", number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// ItemTitle names a line the way the kitchen reads it.
func ItemTitle(item OrderItem) string {
	if item.SecondaryName != "" {
		return fmt.Sprintf("½ %s + ½ %s", item.ProductName, item.SecondaryName)
	}
	return item.ProductName
}

// RenderMessage builds the plain-text order summary sent to the store over WhatsApp.
func RenderMessage(storeName string, o *Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Novo pedido %s*", o.Code)
	if storeName != "" {
		fmt.Fprintf(&b, " - %s", storeName)
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Cliente: %s\n", o.CustomerName)
	fmt.Fprintf(&b, "Telefone: %s\n", o.Phone)
	if o.Fulfillment == pricing.FulfillmentPickup {
		b.WriteString("Retirada no balcão\n")
	} else {
		b.WriteString("Entrega\n")
	}

	b.WriteString("\n*Itens*\n")
	for _, item := range o.Items {
		if item.Gift {
			fmt.Fprintf(&b, "%dx %s (brinde)\n", item.Quantity, ItemTitle(item))
			continue
		}
		fmt.Fprintf(&b, "%dx %s - %s\n", item.Quantity, ItemTitle(item), FormatBRL(item.LineTotal))
		if item.CrustName != "" {
			fmt.Fprintf(&b, "   Borda: %s\n", item.CrustName)
		}
		if len(item.Addons) > 0 {
			fmt.Fprintf(&b, "   Adicionais: %s\n", strings.Join(item.Addons, ", "))
		}
		if item.Notes != "" {
			fmt.Fprintf(&b, "   Obs: %s\n", item.Notes)
		}
	}

	t := o.Totals
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", FormatBRL(t.Subtotal))
	if o.Fulfillment == pricing.FulfillmentDelivery {
		fmt.Fprintf(&b, "Taxa de entrega: %s\n", FormatBRL(t.DeliveryFee))
	}
	if t.CouponDiscount.IsPositive() {
		fmt.Fprintf(&b, "Cupom %s: -%s\n", o.CouponCode, FormatBRL(t.CouponDiscount))
	}
	if t.CashbackApplied.IsPositive() {
		fmt.Fprintf(&b, "Cashback: -%s\n", FormatBRL(t.CashbackApplied))
	}
	fmt.Fprintf(&b, "*Total: %s*\n", FormatBRL(t.GrandTotal))

	b.WriteString("\n")
	fmt.Fprintf(&b, "Pagamento: %s\n", paymentLabels[o.PaymentMethod])
	if o.PaymentMethod == PaymentCash && o.ChangeFor != nil {
		fmt.Fprintf(&b, "Troco para: %s\n", FormatBRL(*o.ChangeFor))
	}

	if a := o.Address; a != nil && o.Fulfillment == pricing.FulfillmentDelivery {
		line := fmt.Sprintf("%s, %s", a.Street, a.Number)
		if a.Complement != "" {
			line += " - " + a.Complement
		}
		fmt.Fprintf(&b, "Endereço: %s - %s", line, a.Neighborhood)
		if a.City != "" {
			fmt.Fprintf(&b, ", %s/%s", a.City, a.State)
		}
		if a.PostalCode != "" {
			fmt.Fprintf(&b, " - CEP %s", a.PostalCode)
		}
		b.WriteString("\n")
	}
	if o.Notes != "" {
		fmt.Fprintf(&b, "Observações: %s\n", o.Notes)
	}

	return strings.TrimRight(b.String(), "\n")
}

// WhatsAppURL returns the wa.me deep link that opens a chat with text prefilled.
func WhatsAppURL(storeNumber, text string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/" + utils.DigitsOnly(storeNumber) + "?text=" + escaped
}
