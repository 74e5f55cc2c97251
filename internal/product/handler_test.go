package product

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func setupApp(seed []Product) (*fiber.App, *InMemoryRepository) {
	repo := NewInMemoryRepository(seed)
	h := NewHandler(NewService(repo))
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	h.RegisterAdminRoutes(app.Group("/api/v1/admin"))
	return app, repo
}

func TestProductRoutes_Registered(t *testing.T) {
	app, _ := setupApp(nil)

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Method+" "+r.Path] = true
		}
	}
	for _, want := range []string{
		"GET /api/v1/products",
		"GET /api/v1/products/:id",
		"POST /api/v1/admin/products",
		"PUT /api/v1/admin/products/:id",
		"DELETE /api/v1/admin/products/:id",
	} {
		if !routes[want] {
			t.Fatalf("expected route %q to be registered", want)
		}
	}
}

func TestProductList_FilterByCategory(t *testing.T) {
	now := time.Now().UTC()
	app, _ := setupApp([]Product{
		{ID: "p-1", Name: "Pagne wax", Category: "Textile", Price: 5000, CreatedAt: now},
		{ID: "p-2", Name: "Savon noir", Category: "Beauté", Price: 1500, CreatedAt: now.Add(time.Minute)},
	})

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products?category=textile", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var list []Product
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].ID != "p-1" {
		t.Fatalf("unexpected filter result %+v", list)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/products/p-404", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res.StatusCode)
	}
}

func TestProductAdminLifecycle(t *testing.T) {
	app, repo := setupApp(nil)

	req := httptest.NewRequest("POST", "/api/v1/admin/products", strings.NewReader(`{"name":"Beurre de karité","category":"Beauté","price":2500,"offerPrice":3000,"stock":4}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 when offer price exceeds price, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/admin/products", strings.NewReader(`{"name":"Beurre de karité","category":"Beauté","price":2500,"offerPrice":2000,"stock":4}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	var created Product
	json.NewDecoder(res.Body).Decode(&created)
	if created.ID == "" || created.EffectivePrice() != 2000 {
		t.Fatalf("unexpected created product %+v", created)
	}

	req = httptest.NewRequest("PUT", "/api/v1/admin/products/"+created.ID, strings.NewReader(`{"name":"Beurre de karité bio","category":"Beauté","price":2800,"stock":10}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on update, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "bio") {
		t.Fatalf("update not reflected: %s", string(b))
	}

	res, _ = app.Test(httptest.NewRequest("DELETE", "/api/v1/admin/products/"+created.ID, nil))
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", res.StatusCode)
	}
	if _, err := repo.GetByID(created.ID); err != ErrNotFound {
		t.Fatalf("product should be gone, got %v", err)
	}
	res, _ = app.Test(httptest.NewRequest("DELETE", "/api/v1/admin/products/"+created.ID, nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", res.StatusCode)
	}
}
