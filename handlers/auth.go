package handlers

import (
	"context"
	"log"
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
	"golang.org/x/crypto/bcrypt"
)

var smsClient = utils.NewSMSClient()

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a customer account. Admin accounts are created through
// the admin-only users endpoint, never here.
func Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}

	if len(req.Name) < 2 || len(req.Name) > 50 {
		return utils.Fail(c, http.StatusBadRequest, "Name must be between 2 and 50 characters")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Valid email required")
	}
	if len(req.Password) < 6 {
		return utils.Fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := database.DB.Collection("users")

	if err := users.FindOne(ctx, bson.M{"email": req.Email}).Err(); err == nil {
		return utils.Fail(c, http.StatusBadRequest, "کاربر با این ایمیل قبلا ثبت نام کرده است")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return utils.Internal(c, "Registration failed", err)
	}

	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
		CreatedAt:    time.Now(),
	}

	pair, err := utils.GenerateTokenPair(user.ID.Hex(), string(user.Role))
	if err != nil {
		return utils.Internal(c, "Registration failed", err)
	}
	user.RefreshToken = pair.RefreshToken

	if _, err := users.InsertOne(ctx, user); err != nil {
		return utils.Internal(c, "Registration failed", err)
	}

	return utils.OK(c, http.StatusCreated, "Customer registered successfully", echo.Map{
		"user":         user.Public(),
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	SessionID string `json:"sessionId,omitempty"`
}

func Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return utils.Fail(c, http.StatusBadRequest, "Email and password are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := database.DB.Collection("users")

	var user models.User
	if err := users.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user); err != nil {
		return utils.Fail(c, http.StatusUnauthorized, "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return utils.Fail(c, http.StatusUnauthorized, "Invalid email or password")
	}

	pair, err := utils.GenerateTokenPair(user.ID.Hex(), string(user.Role))
	if err != nil {
		return utils.Internal(c, "Login failed", err)
	}

	if _, err := users.UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"refreshToken": pair.RefreshToken}}); err != nil {
		return utils.Internal(c, "Login failed", err)
	}

	// Merge the guest cart when a session id comes along. A merge failure
	// must not fail the login.
	cartMerged := false
	if req.SessionID != "" {
		merged, err := mergeGuestCart(ctx, user.ID, req.SessionID)
		if err != nil {
			log.Printf("Error merging cart during login: %v", err)
		} else {
			cartMerged = merged
		}
	}

	return utils.OK(c, http.StatusOK, "Login successful", echo.Map{
		"user":         user.Public(),
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"cartMerged":   cartMerged,
	})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func ChangePassword(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.CurrentPassword == "" {
		return utils.Fail(c, http.StatusBadRequest, "Current password is required")
	}
	if len(req.NewPassword) < 6 {
		return utils.Fail(c, http.StatusBadRequest, "New password must be at least 6 characters")
	}
	if req.NewPassword == req.CurrentPassword {
		return utils.Fail(c, http.StatusBadRequest, "New password must be different from current password")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := database.DB.Collection("users")

	var user models.User
	if err := users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return utils.Fail(c, http.StatusNotFound, "User not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		return utils.Internal(c, "Failed to change password", err)
	}

	if _, err := users.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"passwordHash": string(hash)}}); err != nil {
		return utils.Internal(c, "Failed to change password", err)
	}

	return utils.OK(c, http.StatusOK, "Password changed successfully", nil)
}

type SendOTPRequest struct {
	Phone string `json:"phone"`
}

// SendOTP opens a phone-scoped OTP session and delivers the code by SMS.
// Any previous pending session for the phone is invalidated.
func SendOTP(c echo.Context) error {
	var req SendOTPRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if !utils.ValidateMobileNumber(req.Phone) {
		return utils.Fail(c, http.StatusBadRequest, "شماره موبایل باید در فرمت صحیح ایرانی باشد (مثال: 09123456789)")
	}

	phone := utils.FormatMobileNumber(req.Phone)
	otp := utils.GenerateOTP()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sessions := database.DB.Collection("otpsessions")

	// Invalidate prior pending sessions so only the latest code works.
	if _, err := sessions.UpdateMany(ctx,
		bson.M{"phone": phone, "isUsed": false},
		bson.M{"$set": bson.M{"isUsed": true}}); err != nil {
		return utils.Internal(c, "Failed to send verification code", err)
	}

	session := models.OTPSession{
		ID:        primitive.NewObjectID(),
		Phone:     phone,
		OTP:       otp,
		Attempts:  0,
		ExpiresAt: time.Now().Add(models.OTPTTL),
		IsUsed:    false,
		CreatedAt: time.Now(),
	}

	if _, err := sessions.InsertOne(ctx, session); err != nil {
		return utils.Internal(c, "Failed to send verification code", err)
	}

	if err := smsClient.SendOTP(ctx, phone, otp); err != nil {
		log.Printf("SMS delivery error for %s: %v", phone, err)
		return utils.Internal(c, "خطا در ارسال پیامک", err)
	}

	utils.OTPSent.Inc()
	return utils.OK(c, http.StatusOK, "کد تایید با موفقیت ارسال شد", echo.Map{
		"expiresAt": session.ExpiresAt,
	})
}

type VerifyOTPRequest struct {
	Phone     string `json:"phone"`
	OTP       string `json:"otp"`
	Name      string `json:"name,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// VerifyOTP checks the code against the latest pending session, then finds
// or creates the phone-keyed user and issues a token pair.
func VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if !utils.ValidateMobileNumber(req.Phone) {
		return utils.Fail(c, http.StatusBadRequest, "شماره موبایل باید در فرمت صحیح ایرانی باشد")
	}
	if len(req.OTP) != 5 {
		return utils.Fail(c, http.StatusBadRequest, "کد تایید باید ۵ رقم باشد")
	}

	phone := utils.FormatMobileNumber(req.Phone)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sessions := database.DB.Collection("otpsessions")

	var session models.OTPSession
	err := sessions.FindOne(ctx,
		bson.M{"phone": phone, "isUsed": false},
		// Latest session wins; older ones were invalidated on send anyway.
		mongoFindOneNewest(),
	).Decode(&session)
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "کد تایید یافت نشد، دوباره درخواست دهید")
	}

	if verr := session.Verify(req.OTP, time.Now()); verr != nil {
		switch verr {
		case models.ErrOTPCodeMismatch:
			// Count the failed try; the session dies after the cap.
			if _, err := sessions.UpdateOne(ctx, bson.M{"_id": session.ID},
				bson.M{"$inc": bson.M{"attempts": 1}}); err != nil {
				return utils.Internal(c, "Verification failed", err)
			}
			return utils.Fail(c, http.StatusBadRequest, "کد تایید اشتباه است")
		case models.ErrOTPExpired:
			return utils.Fail(c, http.StatusBadRequest, "کد تایید منقضی شده است")
		case models.ErrOTPMaxAttempts:
			return utils.Fail(c, http.StatusBadRequest, "تعداد تلاش‌ها بیش از حد مجاز است")
		default:
			return utils.Fail(c, http.StatusBadRequest, "کد تایید معتبر نیست")
		}
	}

	// Single-use: burn the session before issuing tokens.
	if _, err := sessions.UpdateOne(ctx, bson.M{"_id": session.ID},
		bson.M{"$set": bson.M{"isUsed": true}}); err != nil {
		return utils.Internal(c, "Verification failed", err)
	}

	users := database.DB.Collection("users")

	var user models.User
	err = users.FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		user = models.User{
			ID:        primitive.NewObjectID(),
			Name:      req.Name,
			Phone:     phone,
			Role:      models.RoleCustomer,
			CreatedAt: time.Now(),
		}
		if _, err := users.InsertOne(ctx, user); err != nil {
			return utils.Internal(c, "Verification failed", err)
		}
	} else if err != nil {
		return utils.Internal(c, "Verification failed", err)
	}

	pair, err := utils.GenerateTokenPair(user.ID.Hex(), string(user.Role))
	if err != nil {
		return utils.Internal(c, "Verification failed", err)
	}
	if _, err := users.UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"refreshToken": pair.RefreshToken}}); err != nil {
		return utils.Internal(c, "Verification failed", err)
	}

	cartMerged := false
	if req.SessionID != "" {
		merged, err := mergeGuestCart(ctx, user.ID, req.SessionID)
		if err != nil {
			log.Printf("Error merging cart during OTP login: %v", err)
		} else {
			cartMerged = merged
		}
	}

	return utils.OK(c, http.StatusOK, "ورود با موفقیت انجام شد", echo.Map{
		"user":         user.Public(),
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"cartMerged":   cartMerged,
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh rotates the refresh token and issues a fresh access token.
func Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return utils.Fail(c, http.StatusBadRequest, "Refresh token is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := database.DB.Collection("users")

	var user models.User
	if err := users.FindOne(ctx, bson.M{"refreshToken": req.RefreshToken}).Decode(&user); err != nil {
		return utils.Fail(c, http.StatusUnauthorized, "Invalid refresh token")
	}

	pair, err := utils.GenerateTokenPair(user.ID.Hex(), string(user.Role))
	if err != nil {
		return utils.Internal(c, "Failed to refresh token", err)
	}

	if _, err := users.UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"refreshToken": pair.RefreshToken}}); err != nil {
		return utils.Internal(c, "Failed to refresh token", err)
	}

	return utils.OK(c, http.StatusOK, "Token refreshed successfully", echo.Map{
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout clears the stored refresh token, ending the long-lived session.
func Logout(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$unset": bson.M{"refreshToken": ""}}); err != nil {
		return utils.Internal(c, "Logout failed", err)
	}

	return utils.OK(c, http.StatusOK, "Logged out successfully", nil)
}
