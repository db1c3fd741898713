package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kapehan-pos/api/internal/database"
	"github.com/kapehan-pos/api/internal/enum"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// StaffStore defines the database methods needed by staff handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type StaffStore interface {
	ListStaff(ctx context.Context) ([]database.Staff, error)
	GetStaff(ctx context.Context, id uuid.UUID) (database.Staff, error)
	CreateStaff(ctx context.Context, arg database.CreateStaffParams) (database.Staff, error)
	UpdateStaff(ctx context.Context, arg database.UpdateStaffParams) (database.Staff, error)
	DeactivateStaff(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// StaffHandler handles staff CRUD endpoints.
type StaffHandler struct {
	store StaffStore
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(store StaffStore) *StaffHandler {
	return &StaffHandler{store: store}
}

// RegisterRoutes registers staff CRUD endpoints on the given Chi router.
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createStaffRequest struct {
	FullName         string `json:"full_name"`
	Position         string `json:"position"`
	Role             string `json:"role"`
	DailyRate        string `json:"daily_rate"`
	Pin              string `json:"pin"`
	SssNumber        string `json:"sss_number"`
	TinNumber        string `json:"tin_number"`
	PhilhealthNumber string `json:"philhealth_number"`
	Email            string `json:"email"`
	Username         string `json:"username"`
	Password         string `json:"password"`
}

type updateStaffRequest struct {
	FullName         string `json:"full_name"`
	Position         string `json:"position"`
	Role             string `json:"role"`
	DailyRate        string `json:"daily_rate"`
	Pin              string `json:"pin"`
	SssNumber        string `json:"sss_number"`
	TinNumber        string `json:"tin_number"`
	PhilhealthNumber string `json:"philhealth_number"`
	Email            string `json:"email"`
}

type staffResponse struct {
	ID               uuid.UUID `json:"id"`
	FullName         string    `json:"full_name"`
	Position         string    `json:"position"`
	Role             string    `json:"role"`
	DailyRate        string    `json:"daily_rate"`
	Status           string    `json:"status"`
	Pin              string    `json:"pin,omitempty"`
	SssNumber        string    `json:"sss_number,omitempty"`
	TinNumber        string    `json:"tin_number,omitempty"`
	PhilhealthNumber string    `json:"philhealth_number,omitempty"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func dbStaffToResponse(s database.Staff) staffResponse {
	resp := staffResponse{
		ID:        s.ID,
		FullName:  s.FullName,
		Position:  s.Position,
		Role:      s.Role,
		DailyRate: numericToString(s.DailyRate),
		Status:    s.Status,
		Email:     s.Email,
		Username:  s.Username,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.PinCode.Valid {
		resp.Pin = s.PinCode.String
	}
	if s.SssNumber.Valid {
		resp.SssNumber = s.SssNumber.String
	}
	if s.TinNumber.Valid {
		resp.TinNumber = s.TinNumber.String
	}
	if s.PhilhealthNumber.Valid {
		resp.PhilhealthNumber = s.PhilhealthNumber.String
	}
	return resp
}

// --- Handlers ---

// List returns all active staff.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	staff, err := h.store.ListStaff(r.Context())
	if err != nil {
		log.Printf("ERROR: list staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]staffResponse, len(staff))
	for i, s := range staff {
		resp[i] = dbStaffToResponse(s)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns one staff member by ID.
func (h *StaffHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}

	staff, err := h.store.GetStaff(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff not found"})
			return
		}
		log.Printf("ERROR: get staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbStaffToResponse(staff))
}

// Create adds a new staff member.
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.FullName == "" || req.Role == "" || req.Email == "" || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "full_name, role, email, username, and password are required"})
		return
	}

	if !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email format"})
		return
	}

	if !isValidRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}

	dailyRate := decimal.Zero
	if req.DailyRate != "" {
		var err error
		dailyRate, err = decimal.NewFromString(req.DailyRate)
		if err != nil || dailyRate.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid daily_rate"})
			return
		}
	}

	if req.Pin != "" && !isValidPin(req.Pin) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "PIN must be 4-6 digits"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: create staff: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	staff, err := h.store.CreateStaff(r.Context(), database.CreateStaffParams{
		FullName:         req.FullName,
		Position:         req.Position,
		Role:             req.Role,
		DailyRate:        decimalToNumeric(dailyRate),
		PinCode:          textOrNull(req.Pin),
		SssNumber:        textOrNull(req.SssNumber),
		TinNumber:        textOrNull(req.TinNumber),
		PhilhealthNumber: textOrNull(req.PhilhealthNumber),
		Email:            req.Email,
		Username:         req.Username,
		HashedPassword:   string(hashed),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": conflictMessage(err)})
			return
		}
		log.Printf("ERROR: create staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, dbStaffToResponse(staff))
}

// Update modifies an existing staff member.
func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}

	var req updateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.FullName == "" || req.Role == "" || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "full_name, role, and email are required"})
		return
	}

	if !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email format"})
		return
	}

	if !isValidRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}

	dailyRate := decimal.Zero
	if req.DailyRate != "" {
		dailyRate, err = decimal.NewFromString(req.DailyRate)
		if err != nil || dailyRate.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid daily_rate"})
			return
		}
	}

	if req.Pin != "" && !isValidPin(req.Pin) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "PIN must be 4-6 digits"})
		return
	}

	staff, err := h.store.UpdateStaff(r.Context(), database.UpdateStaffParams{
		ID:               id,
		FullName:         req.FullName,
		Position:         req.Position,
		Role:             req.Role,
		DailyRate:        decimalToNumeric(dailyRate),
		PinCode:          textOrNull(req.Pin),
		SssNumber:        textOrNull(req.SssNumber),
		TinNumber:        textOrNull(req.TinNumber),
		PhilhealthNumber: textOrNull(req.PhilhealthNumber),
		Email:            req.Email,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff not found"})
			return
		}
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": conflictMessage(err)})
			return
		}
		log.Printf("ERROR: update staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbStaffToResponse(staff))
}

// Delete soft-deletes a staff member by setting status=INACTIVE.
func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}

	_, err = h.store.DeactivateStaff(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff not found"})
			return
		}
		log.Printf("ERROR: delete staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func isValidRole(role string) bool {
	switch role {
	case enum.StaffRoleOwner, enum.StaffRoleManager,
		enum.StaffRoleCashier, enum.StaffRoleKitchen:
		return true
	}
	return false
}

func isValidPin(pin string) bool {
	if len(pin) < 4 || len(pin) > 6 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// conflictMessage maps a unique violation to a user-facing message. The
// active-PIN index gets its own wording so cashiers know to pick another PIN.
func conflictMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == "staff_active_pin_code_key" {
		return "PIN already in use by another active staff member"
	}
	return "email or username already exists"
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
