package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/maosdefada/cakeshop-backend/internal/auditlog"
	"github.com/maosdefada/cakeshop-backend/internal/catalog"
	"github.com/maosdefada/cakeshop-backend/internal/events"
	"github.com/maosdefada/cakeshop-backend/internal/handler"
	"github.com/maosdefada/cakeshop-backend/internal/middleware"
	"github.com/maosdefada/cakeshop-backend/internal/pricing"
	"github.com/maosdefada/cakeshop-backend/internal/relay"
	"github.com/maosdefada/cakeshop-backend/internal/service"
	"github.com/maosdefada/cakeshop-backend/internal/storage"
	"github.com/maosdefada/cakeshop-backend/pkg/i18n"
	pkglogger "github.com/maosdefada/cakeshop-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  *struct {
		Total   int    `json:"total"`
		Notice  string `json:"notice"`
		Warning string `json:"warning"`
	} `json:"meta"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type StorefrontSuite struct {
	suite.Suite

	router    *gin.Engine
	dbSink    *auditlog.DBSink
	launcher  *relay.ClientLauncher
	bus       *events.Bus
	submitted atomic.Int32
	redis     *miniredis.Miniredis
}

func TestStorefrontSuite(t *testing.T) {
	suite.Run(t, new(StorefrontSuite))
}

func (s *StorefrontSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	t := s.T()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&storage.KVEntry{}, &auditlog.OrderLogRow{}))

	s.redis = miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.redis.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := pkglogger.GetLogger()
	bus := events.NewBus(logger)
	s.bus = bus
	s.submitted.Store(0)
	bus.Subscribe("test", events.TopicOrderSubmitted, func(events.Event) { s.submitted.Add(1) })

	store := storage.NewSQLStore(db)
	cat := catalog.MustDefault()
	bundle := i18n.NewDefaultBundle()

	s.dbSink = auditlog.NewDBSink(db)
	s.launcher = relay.NewClientLauncher()

	carts := service.NewCartService(store, bus)
	addresses := service.NewAddressService(store)
	favorites := service.NewFavoriteService(store, cat, bus)
	sessions := service.NewCustomizationService(store, cat, pricing.NewEngine(pricing.DefaultRules()), carts)

	orderCfg := service.DefaultOrderConfig()
	orderCfg.Location = time.UTC
	orders, err := service.NewOrderService(orderCfg, carts, addresses,
		relay.New(s.launcher, logger), auditlog.NewMultiSink(logger, s.dbSink), bus)
	require.NoError(t, err)

	rateCfg := middleware.DefaultRateLimitConfig()
	rateCfg.Requests = 3

	s.router = NewEngine(Handlers{
		Health:        handler.NewHealthHandler("cakeshop-test", nil),
		Catalog:       handler.NewCatalogHandler(cat, bundle),
		Customization: handler.NewCustomizationHandler(sessions, bundle),
		Cart:          handler.NewCartHandler(carts, bundle),
		Favorite:      handler.NewFavoriteHandler(favorites, bundle),
		Address:       handler.NewAddressHandler(addresses, bundle),
		Order:         handler.NewOrderHandler(orders, bundle),
	}, Options{
		Bundle:      bundle,
		RateLimiter: rdb,
		RateLimit:   rateCfg,
	})
}

func (s *StorefrontSuite) do(method, path, shopper string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if shopper != "" {
		req.Header.Set(middleware.ShopperHeader, shopper)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *StorefrontSuite) decode(raw json.RawMessage, v interface{}) {
	s.Require().NoError(json.Unmarshal(raw, v), string(raw))
}

type sessionDTO struct {
	SessionID string `json:"session_id"`
	Quote     struct {
		UnitPrice   string `json:"unit_price"`
		TotalPrice  string `json:"total_price"`
		IsFormValid bool   `json:"is_form_valid"`
	} `json:"quote"`
	Selection struct {
		Quantity int `json:"quantity"`
	} `json:"selection"`
}

type cartDTO struct {
	Items []struct {
		LineID    string `json:"line_id"`
		Quantity  int    `json:"quantity"`
		UnitPrice string `json:"unit_price"`
	} `json:"items"`
	TotalPrice string `json:"total_price"`
	TotalItems int    `json:"total_items"`
}

// addRoundCake runs a customization session for the round cake with one
// simple filling and the given quantity, returning the resulting bag
func (s *StorefrontSuite) addRoundCake(shopper string, quantity int) cartDTO {
	w, env := s.do(http.MethodPost, "/api/v1/customizations", shopper, gin.H{"product_id": "1"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var sess sessionDTO
	s.decode(env.Data, &sess)
	s.Require().NotEmpty(sess.SessionID)

	base := "/api/v1/customizations/" + sess.SessionID
	w, _ = s.do(http.MethodPost, base+"/fillings", shopper, gin.H{"kind": "simple", "option_id": "brigadeiro", "selected": true})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(http.MethodPost, base+"/quantity", shopper, gin.H{"action": "set", "quantity": quantity})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(env.Data, &sess)
	s.Require().True(sess.Quote.IsFormValid)

	w, env = s.do(http.MethodPost, base+"/confirm", shopper, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("Item adicionado à sacola", env.Meta.Notice)

	var res struct {
		Cart cartDTO `json:"cart"`
	}
	s.decode(env.Data, &res)
	return res.Cart
}

func (s *StorefrontSuite) earliestDate(shopper string) string {
	w, env := s.do(http.MethodGet, "/api/v1/checkout/options", shopper, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var opts struct {
		EarliestDate string `json:"earliest_date"`
	}
	s.decode(env.Data, &opts)
	return opts.EarliestDate
}

func (s *StorefrontSuite) TestHealth() {
	w, _ := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"status":"ok"`)
}

func (s *StorefrontSuite) TestShopperIDIssued() {
	w, _ := s.do(http.MethodGet, "/api/v1/cart", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get(middleware.ShopperHeader))
	s.Contains(w.Header().Get("Set-Cookie"), middleware.ShopperCookie+"=")
}

func (s *StorefrontSuite) TestCatalog() {
	w, env := s.do(http.MethodGet, "/api/v1/catalog/products?category=Todos", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Greater(env.Meta.Total, 0)

	w, env = s.do(http.MethodGet, "/api/v1/catalog/products/does-not-exist", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NOT_FOUND", env.Error.Code)
	s.Equal("Recurso não encontrado", env.Error.Message)
}

func (s *StorefrontSuite) TestCheckoutFlow() {
	const shopper = "shopper-e2e"

	bag := s.addRoundCake(shopper, 2)
	s.Require().Len(bag.Items, 1)
	s.Equal("110", bag.Items[0].UnitPrice)
	s.Equal("220", bag.TotalPrice)

	w, env := s.do(http.MethodPut, "/api/v1/address", shopper, gin.H{
		"street": "Rua das Flores", "number": "42", "neighborhood": "Centro",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("Endereço salvo com sucesso!", env.Meta.Notice)

	date := s.earliestDate(shopper)
	w, env = s.do(http.MethodPost, "/api/v1/orders", shopper, gin.H{
		"delivery_type": "delivery", "date": date, "time": "17:30",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("Seu pedido será entregue em Rua das Flores, 42 em "+date+" às 17:30.", env.Meta.Notice)
	s.Empty(env.Meta.Warning)

	var res struct {
		Order struct {
			ID          string `json:"id"`
			TotalPrice  string `json:"total_price"`
			DeliveryFee string `json:"delivery_fee"`
		} `json:"order"`
		Message  string `json:"message"`
		Delivery *struct {
			Transport string `json:"transport"`
		} `json:"delivery"`
	}
	s.decode(env.Data, &res)
	s.Equal("220", res.Order.TotalPrice)
	s.Equal("20", res.Order.DeliveryFee)
	s.Require().NotNil(res.Delivery)
	s.Contains(res.Message, "Rua das Flores")

	rows, err := s.dbSink.ListByOrder(context.Background(), res.Order.ID)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(2, rows[0].Quantity)
	s.Equal("240", rows[0].OrderTotal.String())
	s.bus.Wait()
	s.Equal(int32(1), s.submitted.Load())

	// the bag is emptied by the submission
	w, env = s.do(http.MethodGet, "/api/v1/cart", shopper, nil)
	s.Equal(http.StatusOK, w.Code)
	var after cartDTO
	s.decode(env.Data, &after)
	s.Empty(after.Items)
}

func (s *StorefrontSuite) TestRelayFallbackIsAWarning() {
	const shopper = "shopper-blocked"
	for _, transport := range []string{relay.TransportWaMe, relay.TransportScheme, relay.TransportWeb} {
		s.launcher.Block(transport, true)
	}
	s.addRoundCake(shopper, 1)

	w, env := s.do(http.MethodPost, "/api/v1/orders", shopper, gin.H{
		"delivery_type": "pickup", "date": s.earliestDate(shopper), "time": "11:00",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Contains(env.Meta.Warning, "Não foi possível abrir o WhatsApp")

	var res struct {
		FallbackURL string `json:"fallback_url"`
	}
	s.decode(env.Data, &res)
	s.Contains(res.FallbackURL, "wa.me/5567996184308")
}

func (s *StorefrontSuite) TestCheckoutValidation() {
	const shopper = "shopper-invalid"

	w, env := s.do(http.MethodPost, "/api/v1/orders", shopper, gin.H{
		"delivery_type": "pickup", "date": s.earliestDate(shopper), "time": "11:00",
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("Sua sacola está vazia", env.Error.Message)

	s.addRoundCake(shopper, 1)

	w, env = s.do(http.MethodPost, "/api/v1/orders", shopper, gin.H{
		"delivery_type": "delivery", "date": s.earliestDate(shopper), "time": "17:30",
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("Por favor, adicione um endereço de entrega", env.Error.Message)

	w, env = s.do(http.MethodPost, "/api/v1/orders", shopper, gin.H{
		"delivery_type": "pickup", "date": "01/01/2000", "time": "11:00",
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("Data inválida. Use o formato dd/mm/aaaa a partir de amanhã", env.Error.Message)
}

func (s *StorefrontSuite) TestIncompleteCustomizationIsRejected() {
	const shopper = "shopper-incomplete"
	w, env := s.do(http.MethodPost, "/api/v1/customizations", shopper, gin.H{"product_id": "1"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var sess sessionDTO
	s.decode(env.Data, &sess)

	w, env = s.do(http.MethodPost, "/api/v1/customizations/"+sess.SessionID+"/confirm", shopper, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("Por favor, selecione 1 recheio(s). Você selecionou 0 de 1 recheios", env.Error.Message)

	// a session belongs to the shopper who started it
	w, _ = s.do(http.MethodGet, "/api/v1/customizations/"+sess.SessionID, "someone-else", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *StorefrontSuite) TestQuantityClampNotice() {
	const shopper = "shopper-clamp"
	w, env := s.do(http.MethodPost, "/api/v1/customizations", shopper, gin.H{"product_id": "1"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var sess sessionDTO
	s.decode(env.Data, &sess)

	w, env = s.do(http.MethodPost, "/api/v1/customizations/"+sess.SessionID+"/quantity", shopper, gin.H{"action": "decrement"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(env.Data, &sess)
	s.Equal(1, sess.Selection.Quantity)
	s.Equal("Quantidade mínima é 1", env.Meta.Notice)
}

func (s *StorefrontSuite) TestCartLineOperations() {
	const shopper = "shopper-lines"
	bag := s.addRoundCake(shopper, 1)
	lineID := bag.Items[0].LineID

	w, env := s.do(http.MethodPut, "/api/v1/cart/lines/"+lineID, shopper, gin.H{"quantity": 3})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated cartDTO
	s.decode(env.Data, &updated)
	s.Equal(3, updated.TotalItems)
	s.Equal("330", updated.TotalPrice)

	w, _ = s.do(http.MethodPut, "/api/v1/cart/lines/"+lineID, shopper, gin.H{"quantity": -1})
	s.Equal(http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodDelete, "/api/v1/cart/lines/"+lineID, shopper, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("Item removido da sacola.", env.Meta.Notice)

	w, _ = s.do(http.MethodDelete, "/api/v1/cart/lines/"+lineID, shopper, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *StorefrontSuite) TestFavorites() {
	const shopper = "shopper-fav"

	w, env := s.do(http.MethodPost, "/api/v1/favorites/2/toggle", shopper, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var toggle service.FavoriteToggle
	s.decode(env.Data, &toggle)
	s.True(toggle.IsFavorite)

	w, env = s.do(http.MethodGet, "/api/v1/favorites", shopper, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(1, env.Meta.Total)

	w, _ = s.do(http.MethodPost, "/api/v1/favorites/nope/toggle", shopper, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *StorefrontSuite) TestOrderRateLimit() {
	const shopper = "shopper-spam"
	body := gin.H{"delivery_type": "pickup", "date": s.earliestDate(shopper), "time": "11:00"}

	for i := 0; i < 3; i++ {
		w, _ := s.do(http.MethodPost, "/api/v1/orders", shopper, body)
		s.Equal(http.StatusUnprocessableEntity, w.Code)
	}
	w, env := s.do(http.MethodPost, "/api/v1/orders", shopper, body)
	s.Equal(http.StatusTooManyRequests, w.Code)
	s.Equal("Muitas requisições. Tente novamente em instantes", env.Error.Message)

	// other shoppers are unaffected
	w, _ = s.do(http.MethodPost, "/api/v1/orders", "shopper-calm", body)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *StorefrontSuite) TestEnglishLocale() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/zzz", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(w.Body.String(), "Resource not found")
}
