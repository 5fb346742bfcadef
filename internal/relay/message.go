package relay

import (
	"fmt"
	"strings"

	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Money R$ with a comma decimal separator and two places
func Money(v decimal.Decimal) string {
	return "R$ " + strings.Replace(v.StringFixed(2), ".", ",", 1)
}

func deliveryLabel(t domain.DeliveryType) string {
	if t == domain.DeliveryTypeDelivery {
		return "Entrega"
	}
	return "Retirada na Loja"
}

// FormatOrderMessage pt-BR order summary sent to the bakery
func FormatOrderMessage(o *domain.Order) string {
	var b strings.Builder

	b.WriteString("*NOVO PEDIDO - MÃOS DE FADA CAKE*\n\n")
	fmt.Fprintf(&b, "*Tipo de Entrega:* %s\n", deliveryLabel(o.DeliveryType))
	fmt.Fprintf(&b, "*Data:* %s\n", o.Date)
	fmt.Fprintf(&b, "*Horário:* %s\n\n", o.Time)

	if o.DeliveryType == domain.DeliveryTypeDelivery && o.Address != nil {
		b.WriteString("*Endereço de Entrega:*\n")
		fmt.Fprintf(&b, "%s, %s\n", o.Address.Street, o.Address.Number)
		if o.Address.Complement != "" {
			fmt.Fprintf(&b, "%s\n", o.Address.Complement)
		}
		fmt.Fprintf(&b, "%s\n\n", o.Address.Neighborhood)
	}

	b.WriteString("*ITENS DO PEDIDO:*\n\n")
	for i, item := range o.Items {
		fmt.Fprintf(&b, "*%d. %s*\n", i+1, item.Product.Name)
		fmt.Fprintf(&b, "Quantidade: %d\n", item.Quantity)
		fmt.Fprintf(&b, "Valor unitário: %s\n", Money(item.UnitPrice))

		if len(item.Customizations) > 0 {
			b.WriteString("*Customizações:*\n")
			for _, g := range groupByLabel(item.Customizations) {
				fmt.Fprintf(&b, "- %s: %s\n", g.label, strings.Join(g.values, ", "))
			}
		}
		if item.CustomMessage != "" {
			fmt.Fprintf(&b, "*Mensagem:* \"%s\"\n", item.CustomMessage)
		}
		if item.HasFreeDelivery {
			b.WriteString("*Entrega:* Grátis\n")
		}
		if item.HasFreeTopper {
			b.WriteString("*Topper:* Grátis\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("*RESUMO DE VALORES:*\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", Money(o.TotalPrice))
	if o.DeliveryFee.IsZero() {
		b.WriteString("Taxa de entrega: Grátis\n")
	} else {
		fmt.Fprintf(&b, "Taxa de entrega: %s\n", Money(o.DeliveryFee))
	}
	fmt.Fprintf(&b, "*Total: %s*", Money(o.GrandTotal()))

	return b.String()
}

type labelGroup struct {
	label  string
	values []string
}

// groupByLabel groups values by label keeping first-seen label order
func groupByLabel(items []domain.LineCustomization) []labelGroup {
	groups := make([]labelGroup, 0, len(items))
	index := make(map[string]int, len(items))
	for _, c := range items {
		i, ok := index[c.Label]
		if !ok {
			i = len(groups)
			index[c.Label] = i
			groups = append(groups, labelGroup{label: c.Label})
		}
		groups[i].values = append(groups[i].values, c.Value)
	}
	return groups
}
