package i18n

// DefaultMessages returns built-in translations for all supported locales.
// These can be overridden by loading JSON files from a directory.
func DefaultMessages() map[Locale]map[string]string {
	return map[Locale]map[string]string{
		LocalePtBR: ptBRMessages,
		LocaleEn:   enMessages,
	}
}

var ptBRMessages = map[string]string{
	// Common errors
	"error.not_found":         "Recurso não encontrado",
	"error.bad_request":       "Requisição inválida",
	"error.internal":          "Ocorreu um erro interno",
	"error.too_many_requests": "Muitas requisições. Tente novamente em instantes",
	"error.validation":        "Por favor, preencha todos os campos obrigatórios",

	// Customization
	"customization.missing_groups":   "Por favor, complete todas as opções obrigatórias. Faltam: %s",
	"customization.missing_fillings": "Por favor, selecione %d recheio(s). Você selecionou %d de %d recheios",
	"customization.filling_limit":    "Você já selecionou %d recheio(s). Remova um recheio antes de adicionar outro",
	"customization.message_too_long": "A mensagem pode ter no máximo %d caracteres",
	"quantity.min":                   "Quantidade mínima é %d",
	"quantity.max":                   "Quantidade máxima é %d",

	// Cart
	"cart.item_added":   "Item adicionado à sacola",
	"cart.item_removed": "Item removido da sacola.",

	// Address
	"address.saved": "Endereço salvo com sucesso!",

	// Checkout
	"checkout.date_required":    "Por favor, selecione uma data para o pedido",
	"checkout.date_invalid":     "Data inválida. Use o formato dd/mm/aaaa a partir de amanhã",
	"checkout.time_required":    "Por favor, selecione um horário para o pedido",
	"checkout.time_invalid":     "Horário indisponível para este tipo de entrega",
	"checkout.type_invalid":     "Escolha entre entrega ou retirada",
	"checkout.address_required": "Por favor, adicione um endereço de entrega",
	"checkout.cart_empty":       "Sua sacola está vazia",
	"checkout.success":          "Pedido finalizado com sucesso!",
	"checkout.success_delivery": "Seu pedido será entregue em %s, %s em %s às %s.",
	"checkout.success_pickup":   "Seu pedido será disponível para retirada na loja em %s às %s.",
	"checkout.audit_failed":     "Seu pedido abriu no WhatsApp, mas houve erro ao registrar na planilha.",
	"checkout.relay_fallback":   "Não foi possível abrir o WhatsApp automaticamente. Use o link direto.",
}

var enMessages = map[string]string{
	// Common errors
	"error.not_found":         "Resource not found",
	"error.bad_request":       "Bad request",
	"error.internal":          "Internal server error",
	"error.too_many_requests": "Too many requests. Please try again shortly",
	"error.validation":        "Please fill in all required fields",

	// Customization
	"customization.missing_groups":   "Please complete every required option. Missing: %s",
	"customization.missing_fillings": "Please select %d filling(s). You selected %d of %d",
	"customization.filling_limit":    "You already selected %d filling(s). Remove one before adding another",
	"customization.message_too_long": "The message can have at most %d characters",
	"quantity.min":                   "Minimum quantity is %d",
	"quantity.max":                   "Maximum quantity is %d",

	// Cart
	"cart.item_added":   "Item added to the bag",
	"cart.item_removed": "Item removed from the bag.",

	// Address
	"address.saved": "Address saved!",

	// Checkout
	"checkout.date_required":    "Please pick a date for the order",
	"checkout.date_invalid":     "Invalid date. Use dd/mm/yyyy starting tomorrow",
	"checkout.time_required":    "Please pick a time for the order",
	"checkout.time_invalid":     "That time is not available for this delivery type",
	"checkout.type_invalid":     "Choose delivery or pickup",
	"checkout.address_required": "Please add a delivery address",
	"checkout.cart_empty":       "Your bag is empty",
	"checkout.success":          "Order placed!",
	"checkout.success_delivery": "Your order will be delivered to %s, %s on %s at %s.",
	"checkout.success_pickup":   "Your order will be ready for pickup at the store on %s at %s.",
	"checkout.audit_failed":     "Your order opened in WhatsApp, but it could not be recorded in the spreadsheet.",
	"checkout.relay_fallback":   "WhatsApp could not be opened automatically. Use the direct link.",
}
