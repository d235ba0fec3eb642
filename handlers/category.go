package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/amirhose1n/miropet-server/database"
	"github.com/amirhose1n/miropet-server/models"
	"github.com/amirhose1n/miropet-server/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CategoryRequest struct {
	Name string `json:"name"`
}

// CreateCategory adds a category name. Admin only.
func CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.Name == "" {
		return utils.Fail(c, http.StatusBadRequest, "Validation failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Names are unique; the index rejects the duplicate insert.
	category := models.Category{ID: primitive.NewObjectID(), Name: req.Name}
	if _, err := database.DB.Collection("categories").InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.Fail(c, http.StatusBadRequest, "Category with this name already exists")
		}
		return utils.Internal(c, "Create failed", err)
	}

	return utils.OK(c, http.StatusCreated, "Category created successfully", echo.Map{"category": category})
}

// GetCategories lists all categories.
func GetCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("categories").Find(ctx, bson.M{})
	if err != nil {
		return utils.Internal(c, "Fetch failed", err)
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return utils.Internal(c, "Fetch failed", err)
	}

	return utils.OK(c, http.StatusOK, "Categories retrieved successfully", echo.Map{"categories": categories})
}
