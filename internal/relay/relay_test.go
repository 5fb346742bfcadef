package relay

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLauncher struct {
	mock.Mock
}

func (m *MockLauncher) Launch(ctx context.Context, link Link) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func TestBuildLinks(t *testing.T) {
	links, err := BuildLinks("+55 (67) 99618-4308", "Olá & bolo 100%")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(links.WaMe, "https://wa.me/5567996184308?text="))
	assert.True(t, strings.HasPrefix(links.Scheme, "whatsapp://send?phone=5567996184308&text="))
	assert.True(t, strings.HasPrefix(links.Web, "https://web.whatsapp.com/send?phone=5567996184308&text="))

	u, err := url.Parse(links.WaMe)
	require.NoError(t, err)
	assert.Equal(t, "Olá & bolo 100%", u.Query().Get("text"))
	assert.NotContains(t, links.WaMe, "+")

	_, err = BuildLinks("---", "x")
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestRelay_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("first transport wins", func(t *testing.T) {
		l := new(MockLauncher)
		l.On("Launch", ctx, mock.MatchedBy(func(link Link) bool { return link.Transport == TransportWaMe })).Return(nil).Once()

		d, _, err := New(l, nil).Send(ctx, "5567996184308", "oi")
		require.NoError(t, err)
		assert.Equal(t, TransportWaMe, d.Transport)
		l.AssertExpectations(t)
		l.AssertNumberOfCalls(t, "Launch", 1)
	})

	t.Run("falls back in order", func(t *testing.T) {
		l := new(MockLauncher)
		order := []string{}
		l.On("Launch", ctx, mock.Anything).Run(func(args mock.Arguments) {
			order = append(order, args.Get(1).(Link).Transport)
		}).Return(ErrBlocked).Twice()
		l.On("Launch", ctx, mock.Anything).Return(nil).Once()

		d, _, err := New(l, nil).Send(ctx, "5567996184308", "oi")
		require.NoError(t, err)
		assert.Equal(t, TransportWeb, d.Transport)
		assert.Equal(t, []string{TransportWaMe, TransportScheme}, order)
	})

	t.Run("all blocked yields a fallback link", func(t *testing.T) {
		launcher := NewClientLauncher(TransportWaMe, TransportScheme, TransportWeb)

		d, links, err := New(launcher, nil).Send(ctx, "5567996184308", "oi")
		assert.Nil(t, d)

		var tErr *TransportError
		require.True(t, errors.As(err, &tErr))
		assert.Equal(t, links.WaMe, tErr.Fallback)
		assert.Len(t, tErr.Attempts, 3)
		assert.ErrorIs(t, tErr.Attempts[TransportScheme], ErrBlocked)
		assert.Contains(t, tErr.Error(), "wa.me")
	})

	t.Run("client launcher can unblock", func(t *testing.T) {
		launcher := NewClientLauncher(TransportWaMe)
		d, _, err := New(launcher, nil).Send(ctx, "5567996184308", "oi")
		require.NoError(t, err)
		assert.Equal(t, TransportScheme, d.Transport)

		launcher.Block(TransportWaMe, false)
		d, _, err = New(launcher, nil).Send(ctx, "5567996184308", "oi")
		require.NoError(t, err)
		assert.Equal(t, TransportWaMe, d.Transport)
	})
}

func TestFormatOrderMessage(t *testing.T) {
	listed := decimal.NewFromInt(25)
	order := &domain.Order{
		DeliveryType: domain.DeliveryTypeDelivery,
		Date:         "20/03/2026",
		Time:         "17:30",
		Address: &domain.Address{
			Street: "Rua das Flores", Number: "123", Neighborhood: "Centro", Complement: "Apto 2",
		},
		Items: []domain.CartLine{
			{
				Product:  domain.ProductSnapshot{ID: "1", Name: "Bolo Redondo"},
				Quantity: 2,
				Customizations: []domain.LineCustomization{
					{Type: "cakeSize", Label: "Escolha o Tamanho", Value: "17cm (13 a 15 Fatias)"},
					{Type: "additional", Label: "Adicionais (Opcional)", Value: "Pérolas"},
					{Type: "additional", Label: "Adicionais (Opcional)", Value: "Glitter"},
					{Type: "gourmetFilling", Label: "Escolha de Recheio Gourmet (Opcional)", Value: "Nozes", ListedPrice: &listed, Multiplier: 1},
				},
				CustomMessage: "Feliz aniversário",
				UnitPrice:     decimal.RequireFromString("165.5"),
			},
			{
				Product:         domain.ProductSnapshot{ID: "9", Name: "Bolo Aquário"},
				Quantity:        1,
				UnitPrice:       decimal.NewFromInt(750),
				HasFreeDelivery: true,
			},
		},
		TotalPrice:  decimal.NewFromInt(1081),
		DeliveryFee: decimal.Zero,
	}

	msg := FormatOrderMessage(order)

	want := "*NOVO PEDIDO - MÃOS DE FADA CAKE*\n\n" +
		"*Tipo de Entrega:* Entrega\n" +
		"*Data:* 20/03/2026\n" +
		"*Horário:* 17:30\n\n" +
		"*Endereço de Entrega:*\n" +
		"Rua das Flores, 123\n" +
		"Apto 2\n" +
		"Centro\n\n" +
		"*ITENS DO PEDIDO:*\n\n" +
		"*1. Bolo Redondo*\n" +
		"Quantidade: 2\n" +
		"Valor unitário: R$ 165,50\n" +
		"*Customizações:*\n" +
		"- Escolha o Tamanho: 17cm (13 a 15 Fatias)\n" +
		"- Adicionais (Opcional): Pérolas, Glitter\n" +
		"- Escolha de Recheio Gourmet (Opcional): Nozes\n" +
		"*Mensagem:* \"Feliz aniversário\"\n\n" +
		"*2. Bolo Aquário*\n" +
		"Quantidade: 1\n" +
		"Valor unitário: R$ 750,00\n" +
		"*Entrega:* Grátis\n\n" +
		"*RESUMO DE VALORES:*\n" +
		"Subtotal: R$ 1081,00\n" +
		"Taxa de entrega: Grátis\n" +
		"*Total: R$ 1081,00*"
	assert.Equal(t, want, msg)

	t.Run("pickup omits the address and shows the fee", func(t *testing.T) {
		pickup := *order
		pickup.DeliveryType = domain.DeliveryTypePickup
		pickup.DeliveryFee = decimal.NewFromInt(20)
		msg := FormatOrderMessage(&pickup)
		assert.Contains(t, msg, "*Tipo de Entrega:* Retirada na Loja\n")
		assert.NotContains(t, msg, "Endereço de Entrega")
		assert.Contains(t, msg, "Taxa de entrega: R$ 20,00\n")
		assert.True(t, strings.HasSuffix(msg, "*Total: R$ 1101,00*"))
	})
}
