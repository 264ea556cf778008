package notify

import (
	"fmt"
	"strings"
)

// LineItem mirrors an order line for message rendering.
type LineItem struct {
	Name  string
	Qty   int
	Price int
}

// OrderMessageData carries everything the order-confirmation template needs.
type OrderMessageData struct {
	OrderID    string
	Items      []LineItem
	Subtotal   int
	Tax        int
	Total      int
	InvoiceURL string
}

// OrderMessage renders the confirmation sent right after checkout, with the
// payment link the customer should follow.
func OrderMessage(d OrderMessageData) string {
	var items strings.Builder
	for i, it := range d.Items {
		if i > 0 {
			items.WriteString("\n")
		}
		fmt.Fprintf(&items, "%d. %s\n   Qty: %d x Rp %s", i+1, it.Name, it.Qty, FormatAmount(it.Price))
	}

	return "🛒 *PESANAN BARU*\n\n" +
		"Order ID: " + d.OrderID + "\n\n" +
		"📦 *Produk yang dibeli:*\n" + items.String() + "\n\n" +
		"💰 *Rincian Pembayaran:*\n" +
		"Subtotal: Rp " + FormatAmount(d.Subtotal) + "\n" +
		"PPN: Rp " + FormatAmount(d.Tax) + "\n" +
		"*Total: Rp " + FormatAmount(d.Total) + "*\n\n" +
		"🔗 *Link Pembayaran:*\n" + d.InvoiceURL + "\n\n" +
		"Silakan lakukan pembayaran sebelum link expired.\n" +
		"Terima kasih! 😊"
}

// PaymentSuccessMessage renders the receipt sent once the webhook reports a
// paid invoice.
func PaymentSuccessMessage(orderID string, items []LineItem, total int) string {
	var list strings.Builder
	for i, it := range items {
		if i > 0 {
			list.WriteString("\n")
		}
		fmt.Fprintf(&list, "%d. %s (%dx)", i+1, it.Name, it.Qty)
	}

	return "✅ *PEMBAYARAN BERHASIL*\n\n" +
		"Order ID: " + orderID + "\n\n" +
		"Terima kasih! Pembayaran Anda sebesar *Rp " + FormatAmount(total) + "* telah kami terima.\n\n" +
		"📦 *Produk yang dibeli:*\n" + list.String() + "\n\n" +
		"Pesanan Anda sedang diproses dan akan segera dikirim.\n\n" +
		"Terima kasih telah berbelanja! 🎉"
}

// FormatAmount renders an amount in minor units with id-ID thousand
// separators, e.g. 222000 -> "222.000".
func FormatAmount(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var out strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		out.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if out.Len() > 0 {
			out.WriteString(".")
		}
		out.WriteString(s[i : i+3])
	}
	return sign + out.String()
}
