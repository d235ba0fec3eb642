package handlers

import (
	"context"
	"net/http"
	"net/mail"
	"time"

	"github.com/amirhose1n/miropet-server/database"
	"github.com/amirhose1n/miropet-server/middleware"
	"github.com/amirhose1n/miropet-server/models"
	"github.com/amirhose1n/miropet-server/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// GetUserProfile returns the authenticated user's public profile.
func GetUserProfile(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "User not found")
		}
		return utils.Internal(c, "Failed to retrieve profile", err)
	}

	return utils.OK(c, http.StatusOK, "Profile retrieved successfully", echo.Map{"user": user.Public()})
}

type CreateAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAdminUser registers a new admin account. Admin only.
func CreateAdminUser(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	var req CreateAdminRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if len(req.Name) < 2 || len(req.Name) > 50 {
		return utils.Fail(c, http.StatusBadRequest, "Validation failed")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Validation failed")
	}
	if len(req.Password) < 6 {
		return utils.Fail(c, http.StatusBadRequest, "Validation failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := database.DB.Collection("users")

	if err := users.FindOne(ctx, bson.M{"email": req.Email}).Err(); err == nil {
		return utils.Fail(c, http.StatusBadRequest, "کاربر با این ایمیل قبلا ثبت نام کرده است")
	} else if err != mongo.ErrNoDocuments {
		return utils.Internal(c, "Failed to create admin user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return utils.Internal(c, "Failed to create admin user", err)
	}

	admin := models.User{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	if _, err := users.InsertOne(ctx, admin); err != nil {
		return utils.Internal(c, "Failed to create admin user", err)
	}

	token, err := utils.GenerateJWT(admin.ID.Hex(), string(admin.Role))
	if err != nil {
		return utils.Internal(c, "Failed to create admin user", err)
	}

	var creator models.User
	if err := users.FindOne(ctx, bson.M{"_id": adminID}).Decode(&creator); err != nil {
		return utils.Internal(c, "Failed to create admin user", err)
	}

	return utils.OK(c, http.StatusCreated, "Admin user created successfully", echo.Map{
		"user":  admin.Public(),
		"token": token,
		"createdBy": echo.Map{
			"id":    creator.ID,
			"name":  creator.Name,
			"email": creator.Email,
		},
	})
}

// GetAllUsers lists accounts with search, role filter and pagination.
// Admin only.
func GetAllUsers(c echo.Context) error {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)
	if page < 1 || limit < 1 || limit > 100 {
		return utils.Fail(c, http.StatusBadRequest,
			"Invalid pagination parameters. Page must be >= 1, limit must be between 1-100")
	}

	filter := bson.M{}
	search := c.QueryParam("search")
	if search != "" {
		regex := bson.M{"$regex": search, "$options": "i"}
		filter["$or"] = []bson.M{{"name": regex}, {"email": regex}}
	}
	role := c.QueryParam("role")
	if role == string(models.RoleAdmin) || role == string(models.RoleCustomer) {
		filter["role"] = role
	} else {
		role = ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := database.DB.Collection("users")

	totalUsers, err := users.CountDocuments(ctx, filter)
	if err != nil {
		return utils.Internal(c, "Failed to retrieve users", err)
	}
	totalPages := (totalUsers + int64(limit) - 1) / int64(limit)

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := users.Find(ctx, filter, findOpts)
	if err != nil {
		return utils.Internal(c, "Failed to retrieve users", err)
	}
	defer cursor.Close(ctx)

	var results []models.User
	if err := cursor.All(ctx, &results); err != nil {
		return utils.Internal(c, "Failed to retrieve users", err)
	}

	formatted := make([]models.PublicUser, 0, len(results))
	for i := range results {
		formatted = append(formatted, results[i].Public())
	}

	roleFilter := role
	if roleFilter == "" {
		roleFilter = "all"
	}

	return utils.OK(c, http.StatusOK, "Users retrieved successfully", echo.Map{
		"users": formatted,
		"pagination": echo.Map{
			"currentPage": page,
			"totalPages":  totalPages,
			"totalUsers":  totalUsers,
			"limit":       limit,
			"hasNextPage": int64(page) < totalPages,
			"hasPrevPage": page > 1,
		},
		"filters": echo.Map{
			"search": search,
			"role":   roleFilter,
		},
	})
}
