package middleware

import (
	"fmt"
	"strings"
	"time"

	"lms/config"
	"lms/database"
	"lms/logger"
	"lms/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// GenerateJWT issues an access token for the user.
func GenerateJWT(user *models.User) (string, error) {
	ttl := time.Duration(config.AppConfig.JWTTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"userId":   user.ID,
		"username": user.Username,
		"role":     user.Role,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTKey))
}

// ParseJWT validates the token and returns the user id it was issued for.
func ParseJWT(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token payload")
	}
	// JSON numbers decode as float64.
	userID, ok := claims["userId"].(float64)
	if !ok || userID <= 0 {
		return 0, fmt.Errorf("invalid token payload")
	}
	return uint(userID), nil
}

// JWTMiddleware authenticates the bearer token and loads the user. Blocked users are
// rejected even with a valid token.
func JWTMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
	}

	userID, err := ParseJWT(authHeader[len("Bearer "):])
	if err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
	}

	var user models.User
	if err := database.Database.Db.First(&user, userID).Error; err != nil {
		logger.Debug("token user lookup failed", "user_id", userID, "error", err)
		return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}
	if user.IsBlocked {
		return JsonResponse(c, fiber.StatusForbidden, false, "Your account has been blocked!", nil)
	}

	c.Locals("userId", user.ID)
	c.Locals("user", &user)
	return c.Next()
}

// CurrentUser returns the user loaded by JWTMiddleware.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
