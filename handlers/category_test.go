package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirhose1n/miropet-server/database"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func categoryRequest(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/category", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateCategoryRequiresName(t *testing.T) {
	c, rec := categoryRequest(`{}`)
	if err := CreateCategory(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateCategory(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates category", func(mt *mtest.T) {
		database.DB = mt.DB
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		c, rec := categoryRequest(`{"name":"غذای سگ"}`)
		if err := CreateCategory(c); err != nil {
			mt.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusCreated {
			mt.Errorf("status = %d, want 201", rec.Code)
		}
	})

	mt.Run("duplicate name answers 400", func(mt *mtest.T) {
		database.DB = mt.DB
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: miropet.categories index: name_1",
		}))

		c, rec := categoryRequest(`{"name":"غذای سگ"}`)
		if err := CreateCategory(c); err != nil {
			mt.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			mt.Errorf("status = %d, want 400", rec.Code)
		}
		if body := rec.Body.String(); !strings.Contains(body, "already exists") {
			mt.Errorf("body = %s, want duplicate-name message", body)
		}
	})
}
