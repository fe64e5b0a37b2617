package mockapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/safar/supershop/internal/models"
)

// demoToken is what the storefront hands out on login.
const demoToken = "demo-token"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type roleRequest struct {
	Role string `json:"role"`
}

func login(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Missing required fields")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		rec := s.userByEmailLocked(req.Email)
		if rec == nil {
			fail(c, http.StatusBadRequest, "User not found")
			return
		}
		if rec.password != req.Password {
			fail(c, http.StatusBadRequest, "Incorrect password")
			return
		}

		user := rec.user
		user.CreatedAt = nil
		ok(c, gin.H{"user": user, "token": demoToken})
	}
}

func register(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" || req.Password == "" {
			fail(c, http.StatusBadRequest, "Missing required fields")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.userByEmailLocked(req.Email) != nil {
			fail(c, http.StatusBadRequest, "Email already registered")
			return
		}

		ts := models.NewTimestamp(s.now())
		user := models.User{
			ID:        s.nextUserID,
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			Address:   req.Address,
			Role:      models.RoleUser,
			CreatedAt: &ts,
		}
		s.nextUserID++
		s.users[user.ID] = &userRecord{user: user, password: req.Password}

		user.CreatedAt = nil
		ok(c, gin.H{"message": "User registered successfully", "user": user})
	}
}

func updateProfile(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, found := idParam(c, "user_id")
		if !found {
			return
		}
		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			fail(c, http.StatusBadRequest, "Name is required")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		rec, exists := s.users[userID]
		if !exists {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		rec.user.Name = req.Name
		rec.user.Phone = req.Phone
		rec.user.Address = req.Address

		user := rec.user
		user.CreatedAt = nil
		ok(c, gin.H{"message": "Profile updated successfully", "user": user})
	}
}

func listUsers(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		users := make([]models.User, 0, len(s.users))
		for _, rec := range s.users {
			users = append(users, rec.user)
		}
		s.mu.Unlock()

		sort.Slice(users, func(i, j int) bool {
			ti, tj := users[i].CreatedAt.OrEpoch(), users[j].CreatedAt.OrEpoch()
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			return users[i].ID > users[j].ID
		})

		ok(c, gin.H{"users": users})
	}
}

func updateRole(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, found := idParam(c, "id")
		if !found {
			return
		}
		var req roleRequest
		if err := c.ShouldBindJSON(&req); err != nil || (req.Role != models.RoleAdmin && req.Role != models.RoleUser) {
			fail(c, http.StatusBadRequest, "Invalid role")
			return
		}

		s.mu.Lock()
		if rec, exists := s.users[userID]; exists {
			rec.user.Role = req.Role
		}
		s.mu.Unlock()

		ok(c, gin.H{"message": fmt.Sprintf("User role updated to %s", req.Role)})
	}
}

func (s *Server) userByEmailLocked(email string) *userRecord {
	for _, rec := range s.users {
		if rec.user.Email == email {
			return rec
		}
	}
	return nil
}
