package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/models"
	"github.com/DamasoSilva/Platzgo-sub000/internal/timezone"
	"github.com/DamasoSilva/Platzgo-sub000/internal/validators"
)

type AuthHandler struct {
	db        *gorm.DB
	jwtSecret string
	now       func() time.Time
}

func NewAuthHandler(db *gorm.DB, jwtSecret string) *AuthHandler {
	return &AuthHandler{db: db, jwtSecret: jwtSecret, now: time.Now}
}

// --------- Requests ---------

type EstablishmentSignup struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug" binding:"required"`
	Phone    string `json:"phone"`
	Timezone string `json:"timezone"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`

	// presente: o usuário se cadastra como dono
	Establishment *EstablishmentSignup `json:"establishment"`

	// convite recebido por e-mail após reserva feita pelo dono
	InviteToken string `json:"invite_token"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

var errInvalidInvite = errors.New("invalid invite")

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validators.IsEmailDomainValid(email) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_email_domain",
			"message": "O domínio do e-mail informado não parece ser válido.",
		})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_hash_password"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         string(domain.RoleCustomer),
	}
	if req.Establishment != nil {
		user.Role = string(domain.RoleOwner)
	}

	var est *models.Establishment
	linked := 0

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.User{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			return errEmailTaken
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if req.Establishment != nil {
			e, err := createEstablishment(tx, user.ID, *req.Establishment)
			if err != nil {
				return err
			}
			est = e
		}

		if req.InviteToken != "" {
			n, err := h.acceptInvite(tx, &user, req.InviteToken)
			if err != nil {
				return err
			}
			linked = n
		}
		return nil
	})

	switch {
	case errors.Is(err, errEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email_already_exists"})
		return
	case errors.Is(err, errSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "slug_already_exists"})
		return
	case errors.Is(err, errInvalidInvite):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_invite"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_user"})
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	resp := gin.H{
		"user":                userResponse(&user),
		"token":               token,
		"linked_reservations": linked,
	}
	if est != nil {
		resp["establishment"] = est
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		Where("email = ?", email).
		First(&user).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  userResponse(&user),
		"token": token,
	})
}

// --------- Convite ---------

// acceptInvite liga as reservas do convite (e da mesma série) ao novo usuário.
func (h *AuthHandler) acceptInvite(tx *gorm.DB, user *models.User, token string) (int, error) {
	var invites []models.AccountInvite
	if err := tx.
		Where("email = ? AND accepted_at IS NULL AND expires_at > ?", user.Email, h.now()).
		Order("id DESC").
		Find(&invites).Error; err != nil {
		return 0, err
	}

	inv := matchInvite(invites, token)
	if inv == nil {
		return 0, errInvalidInvite
	}

	now := h.now()
	inv.AcceptedAt = &now
	if err := tx.Save(inv).Error; err != nil {
		return 0, err
	}

	var origin models.Reservation
	if err := tx.First(&origin, inv.ReservationID).Error; err != nil {
		return 0, err
	}

	q := tx.Model(&models.Reservation{}).Where("customer_id IS NULL")
	if origin.SeriesID != nil {
		q = q.Where("id = ? OR series_id = ?", origin.ID, *origin.SeriesID)
	} else {
		q = q.Where("id = ?", origin.ID)
	}
	res := q.Update("customer_id", user.ID)
	return int(res.RowsAffected), res.Error
}

func matchInvite(invites []models.AccountInvite, token string) *models.AccountInvite {
	for i := range invites {
		if bcrypt.CompareHashAndPassword([]byte(invites[i].TokenHash), []byte(token)) == nil {
			return &invites[i]
		}
	}
	return nil
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	now := h.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  now.Add(24 * time.Hour).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}

func userResponse(u *models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"phone": u.Phone,
		"role":  u.Role,
	}
}

func normalizeTimezone(tz string) string {
	if timezone.IsValid(tz) {
		return tz
	}
	return timezone.DefaultTimezone
}
