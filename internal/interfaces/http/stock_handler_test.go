package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/stockledger"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp arma la aplicación Fiber completa sobre el adaptador en memoria
// y devuelve también el store para sembrar datos.
func buildTestApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	guard := stockledger.NewMovementGuardUseCase(
		memory.NewTxRunner(store),
		memory.NewProductRepository(store),
		memory.NewStockRepository(store),
		nil,
		logger.Nop(),
	)
	queries := stockledger.NewStockQueryUseCase(
		memory.NewMovementRepository(store),
		memory.NewStockRepository(store),
	)
	productUC := usecase.NewProductUseCase(memory.NewProductRepository(store))

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Guard:     guard,
		Queries:   queries,
		ProductUC: productUC,
	})
	return app, store
}

// doJSON lanza una petición con body JSON y devuelve la respuesta.
func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decode parsea el body JSON en un mapa genérico.
func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// seedReceipt registra una recepción vía HTTP y exige 201.
func seedReceipt(t *testing.T, app *fiber.App, productID int64, qty string) {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/stock/receipts", fiber.Map{
		"product_id": productID,
		"quantity":   qty,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepciones / reservas / despachos
// ──────────────────────────────────────────────────────────────────────────────

func TestPostReceipts_Retorna201ConMovimientoYStock(t *testing.T) {
	app, store := buildTestApp(t)
	p := store.SeedProduct("Cemento gris 50kg")

	resp := doJSON(t, app, http.MethodPost, "/api/stock/receipts", fiber.Map{
		"product_id":     p.ProductID,
		"quantity":       "100.000",
		"source_id":      77,
		"source_item_id": 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decode(t, resp)
	movement := body["movement"].(map[string]any)
	stock := body["current_stock"].(map[string]any)

	assert.Equal(t, "PURCHASE_RECEIPT", movement["movement_kind"])
	assert.Equal(t, "PURCHASE_ORDER", movement["movement_source"])
	assert.Equal(t, float64(77), movement["source_id"])
	assert.Equal(t, "100", movement["quantity"], "decimal serializa sin ceros sobrantes")
	assert.Equal(t, "100", stock["quantity_on_hand"])
	assert.Equal(t, "100", stock["quantity_available"])
	assert.Equal(t, "0", stock["quantity_reserved"])
}

func TestPostReceipts_ProductoInexistenteRetorna404(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/receipts", fiber.Map{
		"product_id": 999,
		"quantity":   "10",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "PRODUCT_NOT_FOUND", body["code"])
}

func TestPostReceipts_CantidadInvalidaRetorna400(t *testing.T) {
	app, store := buildTestApp(t)
	p := store.SeedProduct("Varilla 1/2")

	for _, qty := range []string{"0", "-5", "1.0001"} {
		resp := doJSON(t, app, http.MethodPost, "/api/stock/receipts", fiber.Map{
			"product_id": p.ProductID,
			"quantity":   qty,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "cantidad %s", qty)
		body := decode(t, resp)
		assert.Equal(t, "INVALID_QUANTITY", body["code"])
	}
}

func TestPostReservations_StockInsuficienteRetorna409(t *testing.T) {
	app, store := buildTestApp(t)
	p := store.SeedProduct("Pintura blanca 1gal")
	seedReceipt(t, app, p.ProductID, "10.000")

	resp := doJSON(t, app, http.MethodPost, "/api/stock/reservations", fiber.Map{
		"product_id": p.ProductID,
		"quantity":   "10.001",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
}

func TestFlujoVentaCompleto_ReservaLiberaYDespacha(t *testing.T) {
	app, store := buildTestApp(t)
	p := store.SeedProduct("Teja zinc 3m")
	seedReceipt(t, app, p.ProductID, "100.000")

	// Reservar 30
	resp := doJSON(t, app, http.MethodPost, "/api/stock/reservations", fiber.Map{
		"product_id": p.ProductID,
		"quantity":   "30.000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	stock := decode(t, resp)["current_stock"].(map[string]any)
	assert.Equal(t, "70", stock["quantity_available"])

	// Liberar 10
	resp = doJSON(t, app, http.MethodPost, "/api/stock/reservations/release", fiber.Map{
		"product_id": p.ProductID,
		"quantity":   "10.000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	stock = decode(t, resp)["current_stock"].(map[string]any)
	assert.Equal(t, "20", stock["quantity_reserved"])
	assert.Equal(t, "80", stock["quantity_available"])

	// Despachar los 20 reservados
	resp = doJSON(t, app, http.MethodPost, "/api/stock/shipments", fiber.Map{
		"product_id":       p.ProductID,
		"quantity":         "20.000",
		"from_reservation": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	stock = decode(t, resp)["current_stock"].(map[string]any)
	assert.Equal(t, "80", stock["quantity_on_hand"])
	assert.Equal(t, "0", stock["quantity_reserved"])
	assert.Equal(t, "80", stock["quantity_available"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes manuales (POST /api/stock/movements)
// ──────────────────────────────────────────────────────────────────────────────

func TestPostMovements_SoloAdmiteAjustes(t *testing.T) {
	app, store := buildTestApp(t)
	p := store.SeedProduct("Alambre negro kg")

	for _, kind := range []string{"PURCHASE_RECEIPT", "SALE_SHIPMENT", "TRANSFER", ""} {
		resp := doJSON(t, app, http.MethodPost, "/api/stock/movements", fiber.Map{
			"product_id":    p.ProductID,
			"movement_kind": kind,
			"quantity":      "5",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "kind %q", kind)
		body := decode(t, resp)
		assert.Equal(t, "VALIDATION", body["code"])
	}
}

func TestPostMovements_AjusteDeEntrada(t *testing.T) {
	app, store := buildTestApp(t)
	p := store.SeedProduct("Alambre negro kg")

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements", fiber.Map{
		"product_id":    p.ProductID,
		"movement_kind": "ADJUSTMENT_IN",
		"quantity":      "15.500",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decode(t, resp)
	movement := body["movement"].(map[string]any)
	assert.Equal(t, "ADJUSTMENT_IN", movement["movement_kind"])
	assert.Equal(t, "ADJUSTMENT", movement["movement_source"])
	stock := body["current_stock"].(map[string]any)
	assert.Equal(t, "15.5", stock["quantity_on_hand"])
}

func TestPostMovements_AjusteDeSalidaExcesivoRetorna409(t *testing.T) {
	app, store := buildTestApp(t)
	p := store.SeedProduct("Alambre negro kg")
	seedReceipt(t, app, p.ProductID, "100.000")

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements", fiber.Map{
		"product_id":    p.ProductID,
		"movement_kind": "ADJUSTMENT_OUT",
		"quantity":      "200.000",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// El rechazo no dejó rastro en el ledger: solo la recepción inicial.
	assert.Len(t, store.Movements(), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetMovements_FiltraYPagina(t *testing.T) {
	app, store := buildTestApp(t)
	p1 := store.SeedProduct("Producto A")
	p2 := store.SeedProduct("Producto B")
	seedReceipt(t, app, p1.ProductID, "10")
	seedReceipt(t, app, p2.ProductID, "20")
	seedReceipt(t, app, p1.ProductID, "30")

	resp := doJSON(t, app, http.MethodGet, "/api/stock/movements?product_id=1&sort=-movement_id", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	content := body["content"].([]any)
	require.Len(t, content, 2)
	first := content[0].(map[string]any)
	assert.Equal(t, float64(3), first["movement_id"], "orden descendente por ID")

	pageInfo := body["page_info"].(map[string]any)
	assert.Equal(t, float64(2), pageInfo["total_elements"])
	assert.Equal(t, float64(20), pageInfo["size"])
}

func TestGetMovements_SortInvalidoRetorna400(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/stock/movements?sort=quantity", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMovements_KindInvalidoRetorna400(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/stock/movements?movement_kind=TRANSFER", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMovementByID(t *testing.T) {
	app, store := buildTestApp(t)
	p := store.SeedProduct("Producto A")
	seedReceipt(t, app, p.ProductID, "10")

	resp := doJSON(t, app, http.MethodGet, "/api/stock/movements/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, float64(1), body["movement_id"])

	resp = doJSON(t, app, http.MethodGet, "/api/stock/movements/99", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body = decode(t, resp)
	assert.Equal(t, "MOVEMENT_NOT_FOUND", body["code"])
}

func TestGetStock_ListaProyeccion(t *testing.T) {
	app, store := buildTestApp(t)
	p1 := store.SeedProduct("Producto A")
	p2 := store.SeedProduct("Producto B")
	seedReceipt(t, app, p1.ProductID, "10")
	seedReceipt(t, app, p2.ProductID, "90")

	resp := doJSON(t, app, http.MethodGet, "/api/stock?available_gte=50", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	content := body["content"].([]any)
	require.Len(t, content, 1)
	row := content[0].(map[string]any)
	assert.Equal(t, float64(p2.ProductID), row["product_id"])
	assert.Equal(t, "90", row["quantity_available"])
}

func TestGetAvailable_CeroSinMovimientos(t *testing.T) {
	app, store := buildTestApp(t)
	p := store.SeedProduct("Producto A")

	resp := doJSON(t, app, http.MethodGet, "/api/stock/1/available", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, float64(p.ProductID), body["product_id"])
	assert.Equal(t, "0", body["quantity_available"], "sin fila el disponible es 0, no 404")
}

func TestGetAvailable_ConStock(t *testing.T) {
	app, store := buildTestApp(t)
	p := store.SeedProduct("Producto A")
	seedReceipt(t, app, p.ProductID, "42.250")

	resp := doJSON(t, app, http.MethodGet, "/api/stock/1/available", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "42.25", body["quantity_available"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestPostProducts_CreaYRechazaSKUDuplicado(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/products", fiber.Map{
		"name": "Cemento gris 50kg",
		"sku":  "CEM-50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, float64(1), body["product_id"])
	assert.Equal(t, "CEM-50", body["sku"])

	resp = doJSON(t, app, http.MethodPost, "/api/products", fiber.Map{
		"name": "Otro producto",
		"sku":  "CEM-50",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body = decode(t, resp)
	assert.Equal(t, "DUPLICATE", body["code"])
}

func TestPostProducts_NombreVacioRetorna400(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/products", fiber.Map{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetProductByID_NoEncontradoRetorna404(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/products/42", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "PRODUCT_NOT_FOUND", body["code"])
}
